package model

import "time"

// DownloadResult holds the bytes of one fetch. It lives only for the
// duration of a single relay.
type DownloadResult struct {
	URL         string
	Data        []byte
	ContentType string
	Elapsed     time.Duration
}

func (r *DownloadResult) Size() int64 {
	if r == nil {
		return 0
	}
	return int64(len(r.Data))
}
