package config

type UploadConfig struct {
	AllowedMimeTypes []string
	MaxSizeMB        int64
}

const WorkersImportContext = "workers_import"

var UploadContexts = map[string]UploadConfig{
	// xlsx это zip-архив, DetectContentType видит только его сигнатуру
	WorkersImportContext: {
		AllowedMimeTypes: []string{"application/zip"},
		MaxSizeMB:        10,
	},
}
