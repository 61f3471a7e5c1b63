package api

import (
	"context"
	"net/http"
)

// EntryRequirements is the minimum admission profile for a programme:
// an APS floor plus per-subject NSC achievement levels.
type EntryRequirements struct {
	APSMin        int            `json:"aps_min"`
	SubjectMinima map[string]int `json:"subject_minima"`
}

// Empty reports whether no requirements were published
func (r EntryRequirements) Empty() bool {
	return r.APSMin == 0 && len(r.SubjectMinima) == 0
}

// Programme is a study programme in a pathway preview
type Programme struct {
	Title              string            `json:"title"`
	Faculty            string            `json:"faculty"`
	QualificationType  string            `json:"qualification_type"`
	Province           string            `json:"province"`
	City               string            `json:"city"`
	DurationMonths     int               `json:"duration_months"`
	TotalEstimatedCost float64           `json:"total_estimated_cost"`
	EntryRequirements  EntryRequirements `json:"entry_requirements"`
}

// Institution hosts a programme
type Institution struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	Province             string `json:"province"`
	City                 string `json:"city"`
	ApplicationPortalURL string `json:"application_portal_url,omitempty"`
}

// PathwayPreview is the single free pathway shown after intake.
// The full ranked list stays behind the paywall.
type PathwayPreview struct {
	Programme   Programme   `json:"programme"`
	Institution Institution `json:"institution"`
	PreviewOnly bool        `json:"preview_only"`
	Message     string      `json:"message,omitempty"`
}

// PathwayPreview fetches the learner's preview pathway
func (c *Client) PathwayPreview(ctx context.Context) (*PathwayPreview, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/pathways/preview", nil)
	if err != nil {
		return nil, err
	}

	var result PathwayPreview
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
