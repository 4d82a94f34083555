package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/png"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

// avatarPalette backs the deterministic per-user avatar color. Matches
// the muted tones the web client uses for identity chips.
var avatarPalette = []string{
	"#F87171", "#FB923C", "#FBBF24", "#A3E635",
	"#34D399", "#22D3EE", "#60A5FA", "#A78BFA",
	"#F472B6", "#94A3B8",
}

const (
	avatarRenderSize = 512
	avatarOutputSize = 256
)

type AvatarService interface {
	ColorFor(email string) string
	Render(user *types.User) ([]byte, error)
}

type avatarService struct {
	log      *logger.Logger
	fontFace font.Face
}

// NewAvatarService loads the optional initials font. Without a font the
// service still renders flat color tiles, so a missing font file is a
// warning rather than a startup failure.
func NewAvatarService(cfg config.AvatarConfig, log *logger.Logger) AvatarService {
	serviceLog := log.With("service", "AvatarService")

	var face font.Face
	if cfg.FontPath != "" {
		raw, err := os.ReadFile(cfg.FontPath)
		if err != nil {
			serviceLog.Warn("Could not read avatar font, rendering without initials", "error", err)
		} else if parsed, err := truetype.Parse(raw); err != nil {
			serviceLog.Warn("Could not parse avatar font, rendering without initials", "error", err)
		} else {
			face = truetype.NewFace(parsed, &truetype.Options{Size: avatarRenderSize * 0.42})
		}
	}

	return &avatarService{log: serviceLog, fontFace: face}
}

// ColorFor picks a palette color deterministically from the email, so
// the same identity always renders the same tile.
func (as *avatarService) ColorFor(email string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return avatarPalette[int(h.Sum32())%len(avatarPalette)]
}

// Render draws the user's initials on their avatar color at double
// resolution and downsamples, returning PNG bytes.
func (as *avatarService) Render(user *types.User) ([]byte, error) {
	bg := user.AvatarColor
	if bg == "" {
		bg = as.ColorFor(user.Email)
	}

	dc := gg.NewContext(avatarRenderSize, avatarRenderSize)
	dc.SetHexColor(bg)
	dc.Clear()

	if as.fontFace != nil {
		initials := initialsFor(user)
		if initials != "" {
			dc.SetFontFace(as.fontFace)
			dc.SetHexColor("#FFFFFF")
			dc.DrawStringAnchored(initials, avatarRenderSize/2, avatarRenderSize/2, 0.5, 0.5)
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, avatarOutputSize, avatarOutputSize))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), dc.Image(), dc.Image().Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("failed to encode avatar png: %w", err)
	}
	return buf.Bytes(), nil
}

func initialsFor(user *types.User) string {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		return strings.ToUpper(firstRune(user.Email))
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return strings.ToUpper(firstRune(parts[0]))
	}
	return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[len(parts)-1]))
}

// firstRune returns the leading character of s on a rune boundary, so
// multi-byte names keep valid UTF-8 initials.
func firstRune(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return string(r)
}
