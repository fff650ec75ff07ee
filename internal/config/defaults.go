package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/bunseki/data/db/documents.db"
	}
	if cfg.Text.Segmenter == "" {
		cfg.Text.Segmenter = SegmenterGSE
	}
	if cfg.Search.ResultLimit == 0 {
		cfg.Search.ResultLimit = 10
	}
	if cfg.Search.VocabularyScope == "" {
		cfg.Search.VocabularyScope = ScopeCorpus
	}
	if cfg.Cluster.DefaultK == 0 {
		cfg.Cluster.DefaultK = 5
	}
	if cfg.Cluster.MaxIterations == 0 {
		cfg.Cluster.MaxIterations = 50
	}
	// Seed 0 is reserved for "unset" so runs are reproducible by default.
	if cfg.Cluster.Seed == 0 {
		cfg.Cluster.Seed = 42
	}
	if cfg.Cluster.ContentPrefix == 0 {
		cfg.Cluster.ContentPrefix = 300
	}
	if cfg.Cluster.ThemeCount == 0 {
		cfg.Cluster.ThemeCount = 3
	}
	if cfg.Import.Extensions == nil {
		cfg.Import.Extensions = []string{".txt", ".md", ".rst", ".html", ".htm", ".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = cfg.Import.Extensions
	}
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
