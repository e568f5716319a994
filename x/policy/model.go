package policy

type upsertRequest struct {
	MsgRateRps  int   `json:"msg_rate_rps"`
	UploadBps   int64 `json:"upload_bps"`
	DownloadBps int64 `json:"download_bps"`
	Burst       int   `json:"burst"`
	Enabled     bool  `json:"enabled"`
	UpdatedBy   *uint `json:"updated_by,omitempty"`
}
