package releases

// Source identifies where the latest version of a language is published.
type Source string

const (
	SourceEndOfLife Source = "endoflife"
	SourceGitHub    Source = "github"
	SourceNPM       Source = "npm"
	SourcePyPI      Source = "pypi"
	// SourceStatic covers specifications and tools without a polled feed;
	// their Current value stands in for the latest version.
	SourceStatic Source = "static"
)

// Language describes how one guide's documented version is tracked.
type Language struct {
	Name   string `yaml:"name" json:"name"`
	Source Source `yaml:"source" json:"source"`
	// Product is the endoflife.date product, Package the npm or PyPI name
	// and Repo the GitHub owner/name, depending on Source.
	Product        string `yaml:"product,omitempty" json:"product,omitempty"`
	Package        string `yaml:"package,omitempty" json:"package,omitempty"`
	Repo           string `yaml:"repo,omitempty" json:"repo,omitempty"`
	GuidePath      string `yaml:"guide_path" json:"guide_path"`
	VersionPattern string `yaml:"version_pattern" json:"version_pattern"`
	Current        string `yaml:"current,omitempty" json:"current,omitempty"`
}

const guides = "docs/02_language_guides/"

// DefaultLanguages returns the tracked language table in check order.
func DefaultLanguages() []Language {
	return []Language{
		{Name: "python", Source: SourceEndOfLife, Product: "python", GuidePath: guides + "python.md", VersionPattern: `Python\s+(\d+\.\d+)(?:\.\d+)?(?:\+)?`},
		{Name: "terraform", Source: SourceEndOfLife, Product: "terraform", GuidePath: guides + "terraform.md", VersionPattern: `Terraform\s+(\d+\.\d+)(?:\.\d+)?(?:\+)?`},
		{Name: "kubernetes", Source: SourceEndOfLife, Product: "kubernetes", GuidePath: guides + "kubernetes.md", VersionPattern: `Kubernetes\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "powershell", Source: SourceEndOfLife, Product: "powershell", GuidePath: guides + "powershell.md", VersionPattern: `PowerShell\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "gitlab", Source: SourceEndOfLife, Product: "gitlab", GuidePath: guides + "gitlab.md", VersionPattern: `GitLab\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "typescript", Source: SourceNPM, Package: "typescript", GuidePath: guides + "typescript.md", VersionPattern: `TypeScript\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "ansible", Source: SourcePyPI, Package: "ansible", GuidePath: guides + "ansible.md", VersionPattern: `Ansible\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "bash", Source: SourceGitHub, Repo: "bminor/bash", GuidePath: guides + "bash.md", VersionPattern: `Bash\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "hcl", Source: SourceStatic, Current: "latest", GuidePath: guides + "hcl.md", VersionPattern: `HCL\s+(\d+)(?:\.\d+)?`},
		{Name: "yaml", Source: SourceStatic, Current: "1.2", GuidePath: guides + "yaml.md", VersionPattern: `YAML\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "json", Source: SourceStatic, Current: "RFC 8259", GuidePath: guides + "json.md", VersionPattern: `JSON\s+`},
		{Name: "sql", Source: SourceStatic, Current: "SQL:2023", GuidePath: guides + "sql.md", VersionPattern: `SQL\s+`},
		{Name: "dockerfile", Source: SourceStatic, Current: "latest", GuidePath: guides + "dockerfile.md", VersionPattern: `Docker\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "docker-compose", Source: SourceGitHub, Repo: "docker/compose", GuidePath: guides + "docker_compose.md", VersionPattern: `Compose\s+(?:v)?(\d+\.\d+)(?:\.\d+)?`},
		{Name: "makefile", Source: SourceStatic, Current: "latest", GuidePath: guides + "makefile.md", VersionPattern: `GNU Make\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "groovy", Source: SourceGitHub, Repo: "apache/groovy", GuidePath: guides + "groovy.md", VersionPattern: `Groovy\s+(\d+\.\d+)(?:\.\d+)?`},
		{Name: "terragrunt", Source: SourceGitHub, Repo: "gruntwork-io/terragrunt", GuidePath: guides + "terragrunt.md", VersionPattern: `Terragrunt\s+(?:v)?(\d+\.\d+)(?:\.\d+)?`},
		{Name: "cdk", Source: SourceNPM, Package: "aws-cdk", GuidePath: guides + "cdk.md", VersionPattern: `AWS CDK\s+(?:v)?(\d+\.\d+)(?:\.\d+)?`},
		{Name: "github-actions", Source: SourceStatic, Current: "latest", GuidePath: guides + "github_actions.md", VersionPattern: `Actions\s+`},
	}
}
