package pilotsdk

import "time"

// ============================================================================
// Auth
// ============================================================================

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// User is the public view of an account. The password hash and the
// verification token never leave the server.
type User struct {
	ID         string    `json:"_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuthResponse is returned by login and email verification.
type AuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

// ============================================================================
// Todos
// ============================================================================

// File is an attachment. Data is base64 on the wire.
type File struct {
	Data         []byte `json:"data"`
	ContentType  string `json:"contentType"`
	OriginalName string `json:"originalName"`
}

type Todo struct {
	ID          string     `json:"_id"`
	User        string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CustomDate  *time.Time `json:"customDate"`

	// File is the first attachment, kept for older clients.
	File  *File  `json:"file,omitempty"`
	Files []File `json:"files"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoRequest creates or partially updates a todo. Nil fields are not sent.
// CustomDate accepts "2006-01-02", RFC 3339 or "null" to clear.
type TodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	CustomDate  *string `json:"customDate,omitempty"`
}

// Upload is a file sent with a multipart todo request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ============================================================================
// Teams
// ============================================================================

type CreateTeamRequest struct {
	TeamName  string `json:"teamName"`
	JoinEmail string `json:"joinEmail"`
}

// TeamResponse is returned when a team is created or joined.
type TeamResponse struct {
	Message  string `json:"message"`
	TeamName string `json:"teamName"`
	ID       string `json:"id"`
}

type TeamMember struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TeamSummary describes a team the caller belongs to.
type TeamSummary struct {
	ID        string       `json:"_id"`
	TeamName  string       `json:"teamName"`
	Role      string       `json:"role"`
	Members   []TeamMember `json:"members"`
	CreatedAt time.Time    `json:"createdAt"`
}

type TeamTodo struct {
	ID          string     `json:"_id"`
	TeamID      string     `json:"teamId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	CustomDate  *time.Time `json:"customDate"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
