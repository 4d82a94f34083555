package chatclient

import "strings"

// Greeting is the empty-state copy shown before the first exchange.
type Greeting struct {
	Headline    string
	Body        string
	SignedIn    bool
	Guest       bool
	AccountLine string
}

const (
	greetingHeadline = "I'm your financial analysis and diligence assistant, here to help with industry insights and value drivers."
	greetingBody     = "First, I'll share an Industry Summary and a Value Driver Tree. Then, I can help draft an Information Request List. Just tell me your industry or business, and we can begin!"
	guestAccountLine = "You can continue as guest, but saving chats and some features will be limited."
)

// IsGuestEmail reports whether the email follows the anonymous-account
// convention.
func IsGuestEmail(email string) bool {
	return strings.HasPrefix(email, "guest-") && strings.HasSuffix(email, "@guest.local")
}

// GreetingFor builds the greeting for the given user; nil means no
// session at all, which reads the same as a guest.
func GreetingFor(user *User) Greeting {
	g := Greeting{Headline: greetingHeadline, Body: greetingBody}
	if user == nil || IsGuestEmail(user.Email) {
		g.Guest = user != nil
		g.AccountLine = guestAccountLine
		return g
	}
	g.SignedIn = true
	g.AccountLine = "You are logged in as " + user.Email
	return g
}

type SuggestedAction struct {
	Description string
}

// SuggestedActions returns the canned prompts offered on an empty chat.
// Picking one is equivalent to typing its description and sending it.
func SuggestedActions() []SuggestedAction {
	return []SuggestedAction{
		{Description: "The target is a supplier of food products like fruit concentrates and food coloring to FMCG companies. It has acquired many companies in the last 5 years."},
		{Description: "A private equity firm is looking to acquire a fintech startup in the payment aggregation domain. The target has seen significant market share increase in recent past."},
		{Description: "A bus operator in Belgium has two revenue streams: bus charters and individual trips. Challenge: Asset utilization and increasing cost."},
		{Description: "Web development company based in Spain, mainly relies on ad-hoc or freelancing projects."},
	}
}
