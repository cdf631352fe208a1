// Package model contains data models for the Sage assistant engine.
package model

import "fmt"

// Category is the closed set of query domains the classifier can route to.
type Category string

const (
	CategoryKYC             Category = "kyc"
	CategoryMarketplace     Category = "marketplace"
	CategoryTokenPurchase   Category = "token_purchase"
	CategoryPlatformContext Category = "platform_context"
	CategoryRealWorld       Category = "real_world"
	CategoryGeneral         Category = "general"
)

// AllCategories lists every valid query category.
var AllCategories = []Category{
	CategoryKYC,
	CategoryMarketplace,
	CategoryTokenPurchase,
	CategoryPlatformContext,
	CategoryRealWorld,
	CategoryGeneral,
}

// ParseCategory converts a string to a Category, rejecting unknown values.
func ParseCategory(s string) (Category, error) {
	for _, c := range AllCategories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// IsPlatform reports whether the category concerns platform operations
// rather than outside-world knowledge.
func (c Category) IsPlatform() bool {
	switch c {
	case CategoryKYC, CategoryMarketplace, CategoryTokenPurchase, CategoryPlatformContext:
		return true
	}
	return false
}

// topicCategories maps conversation topic tags to the category they lean
// toward. Validated at startup by ValidateTopicTable so a typo fails fast
// instead of silently falling through to General.
var topicCategories = map[string]Category{
	"Platform":          CategoryPlatformContext,
	"Mining":            CategoryPlatformContext,
	"Token":             CategoryTokenPurchase,
	"Marketplace":       CategoryMarketplace,
	"KYC":               CategoryKYC,
	"Verification":      CategoryKYC,
	"RealWorld":         CategoryRealWorld,
	"General Knowledge": CategoryRealWorld,
	"Science":           CategoryRealWorld,
	"General":           CategoryGeneral,
}

// TopicCategory returns the category a topic tag leans toward, or General
// when the tag is unknown.
func TopicCategory(topic string) Category {
	if c, ok := topicCategories[topic]; ok {
		return c
	}
	return CategoryGeneral
}

// ValidateTopicTable checks that every topic tag maps to a valid category.
func ValidateTopicTable() error {
	for topic, cat := range topicCategories {
		if _, err := ParseCategory(string(cat)); err != nil {
			return fmt.Errorf("topic %q: %w", topic, err)
		}
	}
	return nil
}
