package dto

import "github.com/polkiloo/rigshop/internal/domain/model"

// BuildRequest describes a saved build payload.
type BuildRequest struct {
	Name       string               `json:"name"`
	Image      model.ImageRef       `json:"image"`
	Components []model.RawComponent `json:"components"`
	Published  bool                 `json:"published"`
}

// PublishRequest toggles build visibility.
type PublishRequest struct {
	Published *bool `json:"published"`
}
