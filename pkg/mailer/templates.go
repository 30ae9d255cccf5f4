package mailer

import (
	"bytes"
	"html/template"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<h2>Bienvenue chez {{.Brand}} !</h2>
<p>Merci de vous être inscrit à notre newsletter.</p>
<p>Vous recevrez nos dernières recettes et actualités culinaires africaines.</p>
<p>L'équipe {{.Brand}}</p>
`))

// WelcomeHTML renders the welcome email body.
func WelcomeHTML() string {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, struct{ Brand string }{Brand: "AfriFood"}); err != nil {
		return ""
	}
	return buf.String()
}
