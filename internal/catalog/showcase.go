package catalog

import "fmt"

type Mode string

const (
	ModeHome     Mode = "home"
	ModeProjects Mode = "projects"
	ModeImages   Mode = "images"
)

func Modes() []Mode {
	return []Mode{ModeHome, ModeProjects, ModeImages}
}

func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

type Tool struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Badge       string `json:"badge,omitempty"`
	Color       string `json:"color"`
}

// Tools is the single-image tool grid.
func Tools() []Tool {
	return []Tool{
		{ID: "background", Title: "Plain Background Generator", Description: "Create clean product shots with custom background colors and professional lighting", Badge: "Popular", Color: "primary"},
		{ID: "replacement", Title: "Background Replacement", Description: "Replace backgrounds with custom scenes, themes, or uploaded reference images", Color: "accent"},
		{ID: "ai-model", Title: "AI Model Wearing Product", Description: "Generate AI models showcasing your products with customizable styles and poses", Badge: "New", Color: "success"},
		{ID: "real-model", Title: "Real Model Simulation", Description: "Create realistic human models wearing or using your products", Color: "warning"},
		{ID: "campaign", Title: "Campaign Shots", Description: "Professional campaign-style photography for seasonal and themed collections", Color: "destructive"},
		{ID: "free-prompt", Title: "Free Prompt / Edit", Description: "Custom image generation and editing with natural language prompts", Color: "muted"},
	}
}

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectReview     ProjectStatus = "review"
	ProjectCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Status        ProjectStatus `json:"status"`
	Collaborators int           `json:"collaborators"`
	LastUpdated   string        `json:"last_updated"`
	Step          int           `json:"step"`
}

// ShowcaseProjects are the sample projects listed in projects mode.
func ShowcaseProjects() []Project {
	return []Project{
		{ID: "1", Name: "Summer Jewelry Collection", Description: "AI-generated campaign shots for new summer jewelry line", Status: ProjectInProgress, Collaborators: 3, LastUpdated: "2 hours ago", Step: 2},
		{ID: "2", Name: "Winter Apparel Campaign", Description: "Holiday season clothing photography replacement", Status: ProjectReview, Collaborators: 5, LastUpdated: "1 day ago", Step: 4},
	}
}

type WorkflowStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func Workflow() []WorkflowStep {
	return []WorkflowStep{
		{Title: "Brief & Concept", Description: "Upload mood boards and style references"},
		{Title: "Model Selection", Description: "Choose AI models or upload references"},
		{Title: "Product Upload", Description: "Bulk upload product images"},
		{Title: "Generate & Edit", Description: "AI generation and collaborative editing"},
	}
}
