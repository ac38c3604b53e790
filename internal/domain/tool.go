package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToolKind identifies one entry of the tool catalog.
type ToolKind string

const (
	ToolCompression      ToolKind = "compression"
	ToolFormatConversion ToolKind = "format-conversion"
	ToolSmartCrop        ToolKind = "smart-crop"
	ToolEnhancement      ToolKind = "enhancement"
	ToolWatermarkRemoval ToolKind = "watermark-removal"
	ToolFaceBlur         ToolKind = "face-blur"
	ToolColorPalette     ToolKind = "color-palette"
	ToolAICaptions       ToolKind = "ai-captions"
)

// Tool is the catalog entry shown on the grid and on the tool screen.
type Tool struct {
	ID       ToolKind `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Detail   string   `json:"description"`
	Icon     string   `json:"icon"`
	Category string   `json:"category"`
	Popular  bool     `json:"is_popular,omitempty"`
	New      bool     `json:"is_new,omitempty"`
}

// UploadPrompt is the helper line shown above the upload area.
func (t Tool) UploadPrompt() string {
	return fmt.Sprintf("Select an image to get started with %s", cases.Lower(language.English).String(t.Title))
}

// ActionLabel is the label of the processing button.
func (t Tool) ActionLabel() string {
	return "Apply " + t.Title
}

// Catalog is an ordered, read-only set of tools.
type Catalog struct {
	tools []Tool
	byID  map[ToolKind]int
}

func NewCatalog(tools []Tool) *Catalog {
	c := &Catalog{tools: append([]Tool(nil), tools...), byID: make(map[ToolKind]int, len(tools))}
	for i, t := range c.tools {
		c.byID[t.ID] = i
	}
	return c
}

// Tools returns the tools in display order.
func (c *Catalog) Tools() []Tool {
	return append([]Tool(nil), c.tools...)
}

// Lookup resolves an identifier; unknown identifiers yield ErrToolNotFound.
func (c *Catalog) Lookup(id string) (Tool, error) {
	i, ok := c.byID[ToolKind(strings.TrimSpace(id))]
	if !ok {
		return Tool{}, fmt.Errorf("%w: %q", ErrToolNotFound, id)
	}
	return c.tools[i], nil
}

// Categories lists distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{}, len(c.tools))
	var out []string
	for _, t := range c.tools {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}

// DefaultCatalog is the product's tool catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Tool{
		{
			ID:       ToolCompression,
			Title:    "Image Compression",
			Summary:  "Reduce file size while maintaining quality with advanced compression algorithms",
			Detail:   "Reduce file size while maintaining visual quality",
			Icon:     "🗜️",
			Category: "Optimization",
			Popular:  true,
		},
		{
			ID:       ToolFormatConversion,
			Title:    "Format Conversion",
			Summary:  "Convert between PNG, JPG, WebP, and other formats instantly",
			Detail:   "Convert between different image formats",
			Icon:     "🔄",
			Category: "Conversion",
		},
		{
			ID:       ToolSmartCrop,
			Title:    "Smart Cropping",
			Summary:  "Crop images for social media with perfect aspect ratios and previews",
			Detail:   "Crop images for social media platforms",
			Icon:     "✂️",
			Category: "Editing",
			Popular:  true,
		},
		{
			ID:       ToolEnhancement,
			Title:    "Image Enhancement",
			Summary:  "Sharpen, denoise, and enhance your images with real-time previews",
			Detail:   "Enhance image quality with filters",
			Icon:     "✨",
			Category: "Enhancement",
		},
		{
			ID:       ToolWatermarkRemoval,
			Title:    "Watermark Removal",
			Summary:  "Remove unwanted watermarks with AI-powered inpainting technology",
			Detail:   "Remove watermarks using AI",
			Icon:     "🎭",
			Category: "AI Tools",
			New:      true,
		},
		{
			ID:       ToolFaceBlur,
			Title:    "Face Blurring",
			Summary:  "Automatically detect and blur faces for privacy protection",
			Detail:   "Automatically blur faces for privacy",
			Icon:     "👤",
			Category: "Privacy",
		},
		{
			ID:       ToolColorPalette,
			Title:    "Color Palette Extractor",
			Summary:  "Extract dominant colors and get HEX codes for your designs",
			Detail:   "Extract colors from your image",
			Icon:     "🎨",
			Category: "Analysis",
		},
		{
			ID:       ToolAICaptions,
			Title:    "AI Caption Generator",
			Summary:  "Generate Instagram captions, alt text, and hashtags with AI",
			Detail:   "Generate captions and hashtags",
			Icon:     "🤖",
			Category: "AI Tools",
			New:      true,
		},
	})
}
