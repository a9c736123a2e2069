package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"reftrack/internal/hits"
)

// transparentGIF is a 1x1 transparent image, served so the pixel route
// works from plain <img> tags without a script.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type trackRequest struct {
	ReferrerURL  string `json:"referrerUrl"`
	UTMSource    string `json:"utmSource"`
	UTMMedium    string `json:"utmMedium"`
	UTMCampaign  string `json:"utmCampaign"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Language     string `json:"language"`
	Timezone     string `json:"timezone"`
}

// Track records a click for a referral code from a JSON beacon.
func (a *API) Track(c *fiber.Ctx) error {
	var req trackRequest
	// An empty or malformed body still counts as a click.
	_ = c.BodyParser(&req)

	hit, err := hits.Collect(a.DB, a.Geo, hits.CollectInput{
		ReferralCode: c.Params("code"),
		IP:           c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		ReferrerURL:  req.ReferrerURL,
		UTMSource:    req.UTMSource,
		UTMMedium:    req.UTMMedium,
		UTMCampaign:  req.UTMCampaign,
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		Language:     req.Language,
		Timezone:     req.Timezone,
	})
	if err != nil {
		return a.fail(c, "Failed to record hit", err)
	}

	a.Logger.Debug("Recorded hit",
		slog.String("id", hit.ID),
		slog.String("referralCode", c.Params("code")))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": hit.ID})
}

// TrackPixel records a click and answers with a transparent GIF. Query
// parameters carry whatever attribution data the embedder could attach.
func (a *API) TrackPixel(c *fiber.Ctx) error {
	_, err := hits.Collect(a.DB, a.Geo, hits.CollectInput{
		ReferralCode: c.Params("code"),
		IP:           c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
		ReferrerURL:  c.Get(fiber.HeaderReferer),
		UTMSource:    c.Query("utm_source"),
		UTMMedium:    c.Query("utm_medium"),
		UTMCampaign:  c.Query("utm_campaign"),
	})
	if err != nil {
		a.Logger.Error("Failed to record pixel hit", slog.Any("error", err))
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	return c.Send(transparentGIF)
}
