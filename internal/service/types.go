package service

// User is an account identity as reported by the gateway.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Credentials identify a user at login.
// Password backends use Email and Password; OAuth backends use AuthCode,
// CodeVerifier and RedirectURL.
type Credentials struct {
	Email    string
	Password string

	AuthCode     string
	CodeVerifier string
	RedirectURL  string
}

// LoginResult is a successful login.
type LoginResult struct {
	Token string
	User  User
}

// SignupInput registers a new account.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput updates the current user's profile.
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskInput carries task fields for create and update.
// Nil fields are omitted from update requests.
type TaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// String returns a pointer to s, for building TaskInput values.
func String(s string) *string { return &s }

// Bool returns a pointer to b, for building TaskInput values.
func Bool(b bool) *bool { return &b }
