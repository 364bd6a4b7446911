package cmd

// authServiceProfile is the PAM service the credential probe runs against.
const authServiceProfile = "system-auth"

// authenticate checks the user's credentials through the PAM stack on c.
// Success is determined by the probe's exit status alone. Callers must only
// probe accounts that already resolve through both the directory service and
// the system resolution path.
func authenticate(c *host, user, password string) bool {
	res := c.run(authProbeRequest{
		service:   authServiceProfile,
		user:      user,
		password:  password,
		operation: "authenticate",
	}, runOptions{})
	return res.ok
}

// changePassword drives a chauthtok through the PAM stack, which with the
// nis token in place propagates to the directory service.
func changePassword(c *host, user, oldPassword, newPassword string) bool {
	res := c.run(authProbeRequest{
		service:     authServiceProfile,
		user:        user,
		password:    oldPassword,
		newPassword: newPassword,
		operation:   "chauthtok",
	}, runOptions{})
	return res.ok
}
