package web

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

// Content is the marketing copy shown on the public pages.
type Content struct {
	Landing       Landing       `yaml:"landing"`
	Hero          Hero          `yaml:"hero"`
	Testimonials  Testimonials  `yaml:"testimonials"`
	Professionals Professionals `yaml:"professionals"`
}

type Landing struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type Hero struct {
	Title       string `yaml:"title"`
	Highlight   string `yaml:"highlight"`
	Description string `yaml:"description"`
}

type Testimonials struct {
	Heading    string `yaml:"heading"`
	Subheading string `yaml:"subheading"`
	Summary    struct {
		Rating  string `yaml:"rating"`
		Reviews string `yaml:"reviews"`
	} `yaml:"summary"`
	Items []Testimonial `yaml:"items"`
}

type Testimonial struct {
	Name   string `yaml:"name"`
	Rating int    `yaml:"rating"`
	Text   string `yaml:"text"`
	Plan   string `yaml:"plan"`
}

type Professionals struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Intro       struct {
		Heading         string   `yaml:"heading"`
		Paragraphs      []string `yaml:"paragraphs"`
		FlexibleHeading string   `yaml:"flexible_heading"`
		Flexible        []string `yaml:"flexible"`
	} `yaml:"intro"`
	Quote struct {
		Text   string `yaml:"text"`
		Author string `yaml:"author"`
	} `yaml:"quote"`
	FeaturesHeading   string        `yaml:"features_heading"`
	Features          []Feature     `yaml:"features"`
	PricingHeading    string        `yaml:"pricing_heading"`
	PricingSubheading string        `yaml:"pricing_subheading"`
	Tiers             []PricingTier `yaml:"tiers"`
}

type Feature struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type PricingTier struct {
	Name     string   `yaml:"name"`
	Price    string   `yaml:"price"`
	Period   string   `yaml:"period"`
	Audience string   `yaml:"audience"`
	Perks    []string `yaml:"perks"`
	Action   string   `yaml:"action"`
	Popular  bool     `yaml:"popular"`
}

// LoadContent parses the embedded marketing copy.
func LoadContent() (*Content, error) {
	return ParseContent(contentYAML)
}

func ParseContent(raw []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to parse page content: %w", err)
	}
	if c.Landing.Title == "" {
		return nil, fmt.Errorf("failed to parse page content: missing landing title")
	}
	return &c, nil
}
