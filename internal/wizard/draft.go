package wizard

import (
	"time"

	"studio-wizard-backend/internal/catalog"
	"studio-wizard-backend/internal/gallery"
	"studio-wizard-backend/internal/staging"
)

// ProjectDraft is the unsaved state of one wizard session.
type ProjectDraft struct {
	Name                string             `json:"name"`
	BriefAssets         staging.Board      `json:"brief_assets"`
	BriefNotes          string             `json:"brief_notes"`
	SelectedModels      []catalog.Model    `json:"selected_models"`
	UploadedModelImages []staging.Asset    `json:"uploaded_model_images"`
	ProductImages       staging.Products   `json:"product_images"`
	GeneratedImages     []gallery.Artifact `json:"generated_images"`
}

// NewDraft returns an empty draft named after the given day.
func NewDraft(now time.Time) ProjectDraft {
	return ProjectDraft{
		Name:                "New Project " + now.Format("1/2/2006"),
		BriefAssets:         staging.NewBoard(),
		SelectedModels:      []catalog.Model{},
		UploadedModelImages: []staging.Asset{},
		ProductImages:       staging.Products{},
		GeneratedImages:     []gallery.Artifact{},
	}
}

// Clone copies every collection so the result shares no backing arrays with d.
func (d ProjectDraft) Clone() ProjectDraft {
	out := d
	out.BriefAssets = d.BriefAssets.Clone()
	out.SelectedModels = append([]catalog.Model{}, d.SelectedModels...)
	out.UploadedModelImages = append([]staging.Asset{}, d.UploadedModelImages...)
	out.ProductImages = append(staging.Products{}, d.ProductImages...)
	out.GeneratedImages = make([]gallery.Artifact, len(d.GeneratedImages))
	for i, a := range d.GeneratedImages {
		a.Comments = append([]gallery.Comment{}, a.Comments...)
		out.GeneratedImages[i] = a
	}
	return out
}

// DraftPatch is a partial update. Nil fields leave the draft key untouched.
type DraftPatch struct {
	Name                *string
	BriefAssets         *staging.Board
	BriefNotes          *string
	SelectedModels      *[]catalog.Model
	UploadedModelImages *[]staging.Asset
	ProductImages       *staging.Products
	GeneratedImages     *[]gallery.Artifact
}

// Empty reports whether the patch changes nothing.
func (p DraftPatch) Empty() bool {
	return p == DraftPatch{}
}

func (d *ProjectDraft) apply(p DraftPatch) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.BriefAssets != nil {
		d.BriefAssets = p.BriefAssets.Clone()
	}
	if p.BriefNotes != nil {
		d.BriefNotes = *p.BriefNotes
	}
	if p.SelectedModels != nil {
		d.SelectedModels = append([]catalog.Model{}, (*p.SelectedModels)...)
	}
	if p.UploadedModelImages != nil {
		d.UploadedModelImages = append([]staging.Asset{}, (*p.UploadedModelImages)...)
	}
	if p.ProductImages != nil {
		d.ProductImages = append(staging.Products{}, (*p.ProductImages)...)
	}
	if p.GeneratedImages != nil {
		d.GeneratedImages = append([]gallery.Artifact{}, (*p.GeneratedImages)...)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func NamePatch(name string) DraftPatch {
	return DraftPatch{Name: ptr(name)}
}

func NotesPatch(notes string) DraftPatch {
	return DraftPatch{BriefNotes: ptr(notes)}
}

func ProductsPatch(p staging.Products) DraftPatch {
	return DraftPatch{ProductImages: ptr(p)}
}

// Step is a 1-based wizard position.
type Step int

const (
	StepBrief Step = iota + 1
	StepModel
	StepProduct
	StepGenerate
)

const StepCount = 4

type StepInfo struct {
	Step     Step   `json:"step"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

func Steps() []StepInfo {
	return []StepInfo{
		{Step: StepBrief, Title: "Brief & Concept", Subtitle: "Upload mood boards and creative direction"},
		{Step: StepModel, Title: "Model Selection", Subtitle: "Choose AI models or upload references"},
		{Step: StepProduct, Title: "Products Upload", Subtitle: "Upload your product images"},
		{Step: StepGenerate, Title: "Generate & Edit", Subtitle: "Create and refine your campaign images"},
	}
}

func (s Step) Valid() bool {
	return s >= StepBrief && s <= StepGenerate
}
