package models

// SignUpRequest is the body of POST /api/auth/signup
type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// SignInRequest is the body of POST /api/auth/signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by sign-up and sign-in
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      User   `json:"user"`
}

// SwipeRequest is the body of POST /api/swipes
type SwipeRequest struct {
	SwipedID  string `json:"swipedId"`
	Direction string `json:"direction"`
}

// SwipeResponse is returned by POST /api/swipes. Match is null when no match exists.
type SwipeResponse struct {
	Swipe SwipeRecord  `json:"swipe"`
	Match *MatchRecord `json:"match"`
}

// SendMessageRequest is the body of POST /api/chat/{matchId}/messages
type SendMessageRequest struct {
	Text string `json:"text"`
}

// PhotoUploadRequest asks for a presigned upload URL
type PhotoUploadRequest struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// PhotoReadRequest asks for a presigned read URL
type PhotoReadRequest struct {
	Key string `json:"key"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
