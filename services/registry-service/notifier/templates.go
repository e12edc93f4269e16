package notifier

import (
	"bytes"
	"fmt"
	"html/template"

	"blood-donor-registry/services/registry-service/models"
)

type content struct {
	subject      string
	heading      string
	capabilities []string
}

var roleContent = map[models.Role]content{
	models.RoleDonor: {
		subject: "Welcome to the Blood Donor Network",
		heading: "Thank you for registering as a blood donor.",
		capabilities: []string{
			"Receive requests from hospitals near you",
			"Track your donation history",
			"Update your availability to donate",
		},
	},
	models.RoleHospital: {
		subject: "Hospital Registration Confirmed",
		heading: "Your hospital has been registered with the Blood Donor Network.",
		capabilities: []string{
			"Search registered donors by blood group and location",
			"Raise urgent blood requests",
			"Manage your hospital profile",
		},
	},
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html>
<body>
<p>Dear {{.Name}},</p>
<p>{{.Heading}}</p>
{{if .HospitalID}}<p>Your Hospital ID is <strong>{{.HospitalID}}</strong>. Use it together with your password to log in.</p>
{{end}}<p>With your account you can:</p>
<ul>
{{range .Capabilities}}<li>{{.}}</li>
{{end}}</ul>
<p>Blood Donor Network</p>
</body>
</html>
`))

// Compose renders the subject and HTML body of a welcome message.
func Compose(msg Welcome) (string, string, error) {
	c, ok := roleContent[msg.Role]
	if !ok {
		return "", "", fmt.Errorf("no welcome template for role %q", msg.Role)
	}

	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		Name         string
		Heading      string
		HospitalID   string
		Capabilities []string
	}{
		Name:         msg.Name,
		Heading:      c.heading,
		HospitalID:   msg.HospitalID,
		Capabilities: c.capabilities,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render welcome body: %w", err)
	}

	return c.subject, buf.String(), nil
}
