package tools

func FullURL(baseURL, path string) string {
	if baseURL == "" {
		return ""
	}
	if baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	if path == "" {
		return baseURL
	}
	if path[0] == '/' {
		path = path[1:]
	}
	return baseURL + "/" + path
}

func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
