package services

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mkarlin/chatdeck-backend/internal/config"
	"github.com/mkarlin/chatdeck-backend/internal/repos/testutil"
	"github.com/mkarlin/chatdeck-backend/internal/types"
)

func TestInitialsForRuneBoundaries(t *testing.T) {
	cases := []struct {
		name string
		user types.User
		want string
	}{
		{name: "ascii_two_names", user: types.User{Name: "Ada Lovelace"}, want: "AL"},
		{name: "ascii_single_name", user: types.User{Name: "Ada"}, want: "A"},
		{name: "multibyte_first_name", user: types.User{Name: "Éric Blanc"}, want: "ÉB"},
		{name: "multibyte_single_name", user: types.User{Name: "Éric"}, want: "É"},
		{name: "multibyte_both_names", user: types.User{Name: "Åsa Öberg"}, want: "ÅÖ"},
		{name: "cjk_name", user: types.User{Name: "田中 太郎"}, want: "田太"},
		{name: "email_fallback", user: types.User{Email: "user@example.com"}, want: "U"},
		{name: "multibyte_email_fallback", user: types.User{Email: "über@example.com"}, want: "Ü"},
		{name: "middle_names_skipped", user: types.User{Name: "Ana Maria Silva"}, want: "AS"},
		{name: "empty", user: types.User{}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := initialsFor(&tc.user)
			if got != tc.want {
				t.Fatalf("initials: want=%q got=%q", tc.want, got)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("initials must be valid utf-8, got %q", got)
			}
		})
	}
}

func TestColorForDeterministicAndNormalized(t *testing.T) {
	svc := NewAvatarService(config.AvatarConfig{}, testutil.Logger(t))

	first := svc.ColorFor("user@example.com")
	if first == "" || !strings.HasPrefix(first, "#") {
		t.Fatalf("color must be a hex value, got %q", first)
	}
	if got := svc.ColorFor("user@example.com"); got != first {
		t.Fatalf("color must be stable: want=%s got=%s", first, got)
	}
	if got := svc.ColorFor("  USER@example.com "); got != first {
		t.Fatalf("color must ignore case and padding: want=%s got=%s", first, got)
	}
}

func TestRenderProducesPNGForMultibyteName(t *testing.T) {
	svc := NewAvatarService(config.AvatarConfig{}, testutil.Logger(t))

	raw, err := svc.Render(&types.User{Name: "Éric Blanc", Email: "eric@example.com"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 256 || bounds.Dy() != 256 {
		t.Fatalf("avatar size: want=256x256 got=%dx%d", bounds.Dx(), bounds.Dy())
	}
}
