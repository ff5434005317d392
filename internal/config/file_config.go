package config

// UploadRules - ограничения на загружаемые файлы по типам
type UploadRules struct {
	CVMaxSize        int64    `yaml:"cv_max_size"`
	CVAllowedTypes   []string `yaml:"cv_allowed_types"`
	LogoMaxSize      int64    `yaml:"logo_max_size"`
	LogoAllowedTypes []string `yaml:"logo_allowed_types"`
	ImageQuality     int      `yaml:"image_quality"` // JPEG quality (1-100)
	ThumbnailSize    int      `yaml:"thumbnail_size"`
}

func DefaultUploadRules() UploadRules {
	return UploadRules{
		CVMaxSize: 5 * 1024 * 1024, // 5MB
		CVAllowedTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
		LogoMaxSize:      2 * 1024 * 1024, // 2MB
		LogoAllowedTypes: []string{"image/*"},
		ImageQuality:     85,
		ThumbnailSize:    256,
	}
}
