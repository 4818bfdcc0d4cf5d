// Package catalog holds the static product and bundle data and the pure
// filtering used by the listing pages.
package catalog

// AllProducts is the category sentinel that matches every product
const AllProducts = "All Products"

// Product is a purchasable AI product
type Product struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Price            string   `json:"price"`
	Features         []string `json:"features"`
	Image            string   `json:"image"`
	Featured         bool     `json:"featured,omitempty"`
}

// Bundle is a discounted group of products
type Bundle struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Products      []string `json:"products"`
	OriginalPrice string   `json:"original_price"`
	BundlePrice   string   `json:"bundle_price"`
	Savings       string   `json:"savings"`
}

var categories = []string{
	AllProducts,
	"Healthcare",
	"Finance",
	"E-commerce",
	"Marketing",
	"Customer Support",
	"HR & Recruiting",
	"Education",
	"Real Estate",
	"AI Infrastructure",
}

var products = []Product{
	{
		ID:               "nextcore",
		Name:             "NextCore",
		Category:         "AI Infrastructure",
		ShortDescription: "Enterprise AI core infrastructure platform for scalable solutions",
		Description:      "NextCore is a comprehensive AI infrastructure platform designed for enterprises requiring scalable, secure, and high-performance AI solutions.",
		Price:            "Starting at $299/mo",
		Features:         []string{"Scalable AI infrastructure", "Advanced security features", "Real-time analytics dashboard"},
		Image:            "/placeholder.svg",
		Featured:         true,
	},
	{
		ID:               "mediscan-ai",
		Name:             "MediScan AI",
		Category:         "Healthcare",
		ShortDescription: "AI-powered medical imaging analysis and diagnosis assistant",
		Description:      "Advanced AI system for analyzing medical images with high accuracy, supporting radiologists in faster and more precise diagnoses.",
		Price:            "Starting at $199/mo",
		Features:         []string{"99% accuracy in imaging analysis", "HIPAA compliant platform", "Integration with major EHR systems"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "finwise-analytics",
		Name:             "FinWise Analytics",
		Category:         "Finance",
		ShortDescription: "Intelligent financial forecasting and risk assessment platform",
		Description:      "Leverage AI to predict market trends, assess investment risks, and optimize portfolio management with real-time insights.",
		Price:            "Starting at $399/mo",
		Features:         []string{"Real-time market analysis", "Risk prediction algorithms", "Automated compliance reporting"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "shopflow-optimizer",
		Name:             "ShopFlow Optimizer",
		Category:         "E-commerce",
		ShortDescription: "AI-driven customer journey and conversion optimization tool",
		Description:      "Maximize your e-commerce conversions with AI-powered personalization, dynamic pricing, and intelligent product recommendations.",
		Price:            "Starting at $149/mo",
		Features:         []string{"Personalized shopping experiences", "Dynamic pricing engine", "Abandoned cart recovery AI"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "campaigncraft-ai",
		Name:             "CampaignCraft AI",
		Category:         "Marketing",
		ShortDescription: "AI marketing campaign generator and performance optimizer",
		Description:      "Create, launch, and optimize marketing campaigns across all channels with AI-generated content and predictive performance insights.",
		Price:            "Starting at $179/mo",
		Features:         []string{"Multi-channel campaign automation", "AI content generation", "Predictive ROI analytics"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "supportiq",
		Name:             "SupportIQ",
		Category:         "Customer Support",
		ShortDescription: "AI chatbot and ticket resolution automation platform",
		Description:      "Reduce support costs by 60% with an AI assistant that handles common queries and routes complex issues intelligently.",
		Price:            "Starting at $99/mo",
		Features:         []string{"24/7 automated support", "Natural language processing", "Multi-language support (50+ languages)"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "talentmatch-pro",
		Name:             "TalentMatch Pro",
		Category:         "HR & Recruiting",
		ShortDescription: "AI-powered recruitment and candidate matching system",
		Description:      "Find the perfect candidates faster with AI that screens resumes, matches skills, and predicts cultural fit.",
		Price:            "Starting at $249/mo",
		Features:         []string{"Automated resume screening", "Predictive candidate scoring", "Bias-free hiring algorithms"},
		Image:            "/placeholder.svg",
	},
	{
		ID:               "edumate-learning",
		Name:             "EduMate Learning",
		Category:         "Education",
		ShortDescription: "Adaptive AI learning platform with personalized curriculum",
		Description:      "Transform education with AI that adapts to each student's learning pace, style, and needs, ensuring optimal outcomes.",
		Price:            "Starting at $79/mo",
		Features:         []string{"Personalized learning paths", "Real-time progress tracking", "Automated grading and feedback"},
		Image:            "/placeholder.svg",
	},
}

var bundles = []Bundle{
	{
		ID:            "startup-growth",
		Name:          "Startup Growth Pack",
		Description:   "Everything you need to launch and scale your startup",
		Products:      []string{"ShopFlow Optimizer", "CampaignCraft AI", "SupportIQ"},
		OriginalPrice: "$427/mo",
		BundlePrice:   "$299/mo",
		Savings:       "30%",
	},
	{
		ID:            "enterprise-suite",
		Name:          "Enterprise AI Suite",
		Description:   "Complete enterprise-grade AI infrastructure",
		Products:      []string{"NextCore", "FinWise Analytics", "TalentMatch Pro", "SupportIQ"},
		OriginalPrice: "$846/mo",
		BundlePrice:   "$649/mo",
		Savings:       "23%",
	},
	{
		ID:            "healthcare-bundle",
		Name:          "Healthcare Innovation Bundle",
		Description:   "Comprehensive AI solutions for healthcare providers",
		Products:      []string{"MediScan AI", "NextCore", "SupportIQ"},
		OriginalPrice: "$597/mo",
		BundlePrice:   "$449/mo",
		Savings:       "25%",
	},
	{
		ID:            "marketing-powerhouse",
		Name:          "Marketing Powerhouse",
		Description:   "Complete marketing automation and optimization suite",
		Products:      []string{"CampaignCraft AI", "ShopFlow Optimizer", "FinWise Analytics"},
		OriginalPrice: "$727/mo",
		BundlePrice:   "$549/mo",
		Savings:       "24%",
	},
}

// Products returns a copy of the product list in catalog order
func Products() []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.clone()
	}
	return out
}

// Bundles returns a copy of the bundle list
func Bundles() []Bundle {
	out := make([]Bundle, len(bundles))
	for i, b := range bundles {
		b.Products = append([]string(nil), b.Products...)
		out[i] = b
	}
	return out
}

// Categories returns the filter categories, sentinel first
func Categories() []string {
	return append([]string(nil), categories...)
}

// FindProduct looks a product up by id
func FindProduct(id string) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p.clone(), true
		}
	}
	return Product{}, false
}

// FindBundle looks a bundle up by id
func FindBundle(id string) (Bundle, bool) {
	for _, b := range bundles {
		if b.ID == id {
			b.Products = append([]string(nil), b.Products...)
			return b, true
		}
	}
	return Bundle{}, false
}

func (p Product) clone() Product {
	p.Features = append([]string(nil), p.Features...)
	return p
}
