package routes

import (
	"fmt"
	"net/http"
)

const privacyPolicyHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Paldeck Privacy Policy</title>
</head>
<body>
	<h1>Privacy Policy</h1>
	<p>Paldeck stores your email, your profile and the people you swipe on so it can suggest new friends and show your matches.</p>
	<p>Your profile is visible to other signed-in members. Your swipes are never shown to anyone, and messages are only visible to the two people in a match.</p>
	<p>Photos are stored privately and shared through links that expire after a few minutes.</p>
</body>
</html>
`

// PrivacyPolicyHandler serves the privacy policy page linked from the app stores
func PrivacyPolicyHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, privacyPolicyHTML)
}
