package constant

const (
	// TokenScope is the fixed scope requested for every identity token.
	TokenScope = "User.Read"
)

// AuthTriggers is the literal set of phrases that start the authentication
// flow. Matching is exact after trimming and lowercasing; no fuzzy matching.
var AuthTriggers = map[string]struct{}{
	"auth":         {},
	"authenticate": {},
	"login":        {},
	"đăng nhập":    {},
	"xác thực":     {},
}

// User-facing reply text. Backend error detail never appears here; operators
// get it from the logs instead.
const (
	MsgCannotDetermineUser = "❌ Cannot determine user. Please authenticate by typing 'auth'."
	MsgAuthRequired        = "🔐 You need to authenticate first. Please type 'auth' or 'login' to sign in."
	MsgSignInInitiated     = "Initiating sign-in... Follow the prompt from your chat client to complete authentication."
	MsgReauthenticate      = "🔐 Your session is no longer valid. Please type 'auth' to authenticate again."
	MsgBackendUnavailable  = "⚠️ The knowledge service is not responding right now. Please try again later."
	MsgGenericFailure      = "❌ Something went wrong. Please try again later or contact an admin."

	MsgAuthSuccessFmt = "✅ Authentication successful!\n\nHello %s! You can ask me about HR policies, leave policies, benefits, and more."
	MsgAuthWarningFmt = "⚠️ Got your token, but registering it with the backend failed: %s"
	SourcesHeader     = "\n\n📚 Sources:"
	MaxSourcesInReply = 3
)
