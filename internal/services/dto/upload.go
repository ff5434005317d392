package dto

// FileUpload - файл, полученный из multipart формы
type FileUpload struct {
	Data         []byte
	DeclaredName string
	DeclaredMime string
}

// FileRef - ссылка на сохраненный объект
type FileRef struct {
	Path       string `json:"path"`
	StoredName string `json:"stored_name"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	URL        string `json:"url,omitempty"`
}
