package genapi

import (
	jsoniter "github.com/json-iterator/go"
)

// ResultExtractor tries one known response shape and reports whether it
// yielded an image. Extractors run in a fixed order; the first hit wins.
type ResultExtractor interface {
	Extract(body []byte) (url string, b64 string, ok bool)
}

var resultExtractors = []ResultExtractor{
	&outputImagesExtractor{},
	&dataArrayExtractor{},
	&outputImageURLExtractor{},
	&outputResultsExtractor{},
	&resultImageURLExtractor{},
	&flatURLExtractor{},
}

// ExtractResult walks the known shapes and returns the first image found.
func ExtractResult(body []byte) (url string, b64 string, ok bool) {
	for _, e := range resultExtractors {
		if url, b64, ok = e.Extract(body); ok {
			return
		}
	}
	return "", "", false
}

// {"output_images": ["https://..."]}
type outputImagesExtractor struct{}

func (e *outputImagesExtractor) Extract(body []byte) (string, string, bool) {
	images := jsoniter.Get(body, "output_images")
	if images.Size() == 0 {
		return "", "", false
	}
	url := images.Get(0).ToString()
	if url == "" {
		return "", "", false
	}
	return url, "", true
}

// {"data": [{"url": ...}]} or {"data": [{"b64_json": ...}]}
type dataArrayExtractor struct{}

func (e *dataArrayExtractor) Extract(body []byte) (string, string, bool) {
	var s struct {
		Data []struct {
			URL     string `json:"url,omitempty"`
			B64JSON string `json:"b64_json,omitempty"`
		} `json:"data"`
	}
	if err := jsoniter.Unmarshal(body, &s); err != nil {
		return "", "", false
	}
	for _, v := range s.Data {
		if v.URL != "" || v.B64JSON != "" {
			return v.URL, v.B64JSON, true
		}
	}
	return "", "", false
}

// {"output": {"image_url": ...}}
type outputImageURLExtractor struct{}

func (e *outputImageURLExtractor) Extract(body []byte) (string, string, bool) {
	url := jsoniter.Get(body, "output", "image_url").ToString()
	if url == "" {
		return "", "", false
	}
	return url, "", true
}

// {"output": {"results": [{"url": ...}]}}, some providers use "orig_url".
type outputResultsExtractor struct{}

func (e *outputResultsExtractor) Extract(body []byte) (string, string, bool) {
	first := jsoniter.Get(body, "output", "results", 0)
	if first.LastError() != nil {
		return "", "", false
	}
	url := first.Get("url").ToString()
	if url == "" {
		url = first.Get("orig_url").ToString()
	}
	if url == "" {
		return "", "", false
	}
	return url, "", true
}

// {"result": {"image_url": ...}}
type resultImageURLExtractor struct{}

func (e *resultImageURLExtractor) Extract(body []byte) (string, string, bool) {
	url := jsoniter.Get(body, "result", "image_url").ToString()
	if url == "" {
		return "", "", false
	}
	return url, "", true
}

// {"url": ...}
type flatURLExtractor struct{}

func (e *flatURLExtractor) Extract(body []byte) (string, string, bool) {
	url := jsoniter.Get(body, "url").ToString()
	if url == "" {
		return "", "", false
	}
	return url, "", true
}
