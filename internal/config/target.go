package config

import "path/filepath"

// Well-known target names.
const (
	TargetHuman = "human"
	TargetAI    = "ai"
)

// Target pairs a notes vault with the Hugo site it is published to.
type Target struct {
	Name               string `yaml:"-"`
	NotesRoot          string `yaml:"notes_root"`
	SiteRoot           string `yaml:"site_root"`
	BaseURL            string `yaml:"base_url"`
	DeployBranch       string `yaml:"deploy_branch"`
	DeployRemoteBranch string `yaml:"deploy_remote_branch"`
	AIImages           bool   `yaml:"ai_images"`
	Paths              Paths  `yaml:"paths,omitempty"`
}

// Paths holds every directory a deployment touches. Empty fields are filled
// from the standard vault/site layout when the configuration is loaded.
type Paths struct {
	PostsSource    string `yaml:"posts_source,omitempty"`
	ImagesSource   string `yaml:"images_source,omitempty"`
	AIImagesSource string `yaml:"ai_images_source,omitempty"`
	PostsDest      string `yaml:"posts_dest,omitempty"`
	ImagesDest     string `yaml:"images_dest,omitempty"`
	AIImagesDest   string `yaml:"ai_images_dest,omitempty"`
}

// ResolvePaths fills unset paths from the layout:
//
//	<notes>/posts  <notes>/images  <notes>/ai_images
//	<site>/content/posts  <site>/static/images  <site>/static/images/ai_images
func (t *Target) ResolvePaths() {
	p := &t.Paths
	setDefault(&p.PostsSource, filepath.Join(t.NotesRoot, "posts"))
	setDefault(&p.ImagesSource, filepath.Join(t.NotesRoot, "images"))
	setDefault(&p.AIImagesSource, filepath.Join(t.NotesRoot, "ai_images"))
	setDefault(&p.PostsDest, filepath.Join(t.SiteRoot, "content", "posts"))
	setDefault(&p.ImagesDest, filepath.Join(t.SiteRoot, "static", "images"))
	setDefault(&p.AIImagesDest, filepath.Join(t.SiteRoot, "static", "images", "ai_images"))
}

// PublicDir is the Hugo build output that the branch split publishes.
func (t Target) PublicDir(prefix string) string {
	return filepath.Join(t.SiteRoot, prefix)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
