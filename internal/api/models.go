package api

type errorResp struct {
	Error string `json:"error"`
}

type formatsResp struct {
	Formats []string `json:"formats"`
}

type healthResp struct {
	Status string `json:"status"`
}

type versionResp struct {
	Version string `json:"version"`
}
