package domain

// Landing is the static marketing content rendered around the tool grid.
type Landing struct {
	Hero         Hero          `json:"hero"`
	Stats        []Stat        `json:"stats"`
	Features     []Feature     `json:"features"`
	Testimonials []Testimonial `json:"testimonials"`
}

type Hero struct {
	Headline string `json:"headline"`
	Tagline  string `json:"tagline"`
}

type Stat struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Testimonial struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Initials string `json:"initials"`
	Quote    string `json:"quote"`
	Rating   int    `json:"rating"`
}

// DefaultLanding returns a fresh copy of the landing content.
func DefaultLanding() Landing {
	return Landing{
		Hero: Hero{
			Headline: "Professional Image Tools Made Simple",
			Tagline:  "Transform, enhance, and optimize your images with our suite of powerful AI-powered tools. No downloads required, works entirely in your browser.",
		},
		Stats: []Stat{
			{Value: "10M+", Label: "Images Processed"},
			{Value: "150K+", Label: "Happy Users"},
			{Value: "99.9%", Label: "Uptime"},
			{Value: "24/7", Label: "Support"},
		},
		Features: []Feature{
			{Title: "Lightning Fast", Description: "Process images instantly with our optimized algorithms and client-side processing."},
			{Title: "Privacy First", Description: "Your images never leave your device unless you choose to save them to the cloud."},
			{Title: "Cloud Storage", Description: "Save your processed images securely in the cloud and access them anywhere."},
			{Title: "AI Powered", Description: "Leverage cutting-edge AI for face detection, watermark removal, and smart cropping."},
			{Title: "No Waiting", Description: "Real-time preview and instant processing - see results as you work."},
			{Title: "Team Ready", Description: "Share processed images with your team and collaborate on projects."},
		},
		Testimonials: []Testimonial{
			{Name: "Sarah Johnson", Role: "Creative Director", Company: "PixelCraft Studio", Initials: "SJ", Quote: "Lock The Day has revolutionized our image workflow. The AI-powered tools save us hours of manual work.", Rating: 5},
			{Name: "Marcus Chen", Role: "Social Media Manager", Company: "TrendyBrand", Initials: "MC", Quote: "The smart cropping feature is a game-changer for creating social media content across all platforms.", Rating: 5},
			{Name: "Emma Rodriguez", Role: "Photographer", Company: "Freelance", Initials: "ER", Quote: "Finally, a tool that understands what photographers need. The enhancement features are incredible.", Rating: 5},
		},
	}
}
