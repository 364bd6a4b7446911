package cmd

import "strings"

// Config file paths on the hosts under test.
const (
	ypConfPath      = "/etc/yp.conf"
	nsswitchPath    = "/etc/nsswitch.conf"
	passwdPath      = "/etc/passwd"
	groupPath       = "/etc/group"
	hostsPath       = "/etc/hosts"
	pamPasswordPath = "/etc/pam.d/common-password"
)

// compatMarker starts an NIS merge directive in passwd/group files. Any line
// beginning with it counts as present, qualified or not.
const compatMarker = "+"

// lineTransform is a pure function over a config file's lines. Transforms
// must be idempotent: applying one to its own output is a no-op.
type lineTransform func(lines []string) []string

// applyLineTransform downloads path from h, applies fn, and uploads the
// result when it differs. False means the download or upload failed; callers
// abort the dependent step but the run continues.
func applyLineTransform(h *host, path string, fn lineTransform) bool {
	content, ok := h.recvFile(path)
	if !ok {
		return false
	}
	lines := splitLines(content)
	out := fn(lines)
	if equalLines(lines, out) {
		return true
	}
	return h.sendFile(path, joinLines(out))
}

// splitLines breaks file content into lines. A trailing newline does not
// produce an empty final line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// overwriteTransform discards the current content and leaves exactly the
// given line. Binding config is replaced wholesale, never merged.
func overwriteTransform(line string) lineTransform {
	return func([]string) []string { return []string{line} }
}

// appendIfMissingPrefix appends line unless some existing line already
// begins with prefix.
func appendIfMissingPrefix(prefix, line string) lineTransform {
	return func(lines []string) []string {
		for _, l := range lines {
			if strings.HasPrefix(l, prefix) {
				return lines
			}
		}
		out := make([]string, len(lines), len(lines)+1)
		copy(out, lines)
		return append(out, line)
	}
}

// sectionReplaceTransform rewrites the value of one section of a
// colon-delimited config (nsswitch style): the line whose first field equals
// section becomes "section: methods"; every other line passes through
// byte-identical and in order.
func sectionReplaceTransform(section, methods string) lineTransform {
	return func(lines []string) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			name, _, found := strings.Cut(l, ":")
			if found && strings.TrimSpace(name) == section {
				out[i] = section + ": " + methods
				continue
			}
			out[i] = l
		}
		return out
	}
}

// tokenAppendTransform appends token to directive lines (first field equals
// keyword and the named module appears as a field) unless the token is
// already a field of that line.
func tokenAppendTransform(keyword, module, token string) lineTransform {
	return func(lines []string) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			fields := strings.Fields(l)
			if len(fields) == 0 || fields[0] != keyword ||
				!containsField(fields, module) || containsField(fields, token) {
				out[i] = l
				continue
			}
			out[i] = l + " " + token
		}
		return out
	}
}

func containsField(fields []string, want string) bool {
	for _, f := range fields {
		if f == want {
			return true
		}
	}
	return false
}

// setBindingConfig overwrites the client's yp.conf with the rendered spec.
func setBindingConfig(c *host, spec bindingSpec) bool {
	return applyLineTransform(c, ypConfPath, overwriteTransform(spec.render()))
}

// enableCompatEntry adds the merge directive to a client database file.
// already reports whether a merge marker was present before the call, in
// which case nothing is rewritten.
func enableCompatEntry(c *host, path, directive string) (already, ok bool) {
	content, got := c.recvFile(path)
	if !got {
		return false, false
	}
	lines := splitLines(content)
	for _, l := range lines {
		if strings.HasPrefix(l, compatMarker) {
			return true, true
		}
	}
	return false, c.sendFile(path, joinLines(append(lines, directive)))
}

// replaceResolutionMethods backs up nsswitch.conf once, then rewrites the
// method list of one database.
func replaceResolutionMethods(c *host, database, methods string) bool {
	if res := c.run(backupFileRequest{path: nsswitchPath}, runOptions{}); !res.ok {
		return false
	}
	return applyLineTransform(c, nsswitchPath, sectionReplaceTransform(database, methods))
}

// enablePasswordChangeIntegration appends the nis token to the pam_unix
// password directive so a chauthtok propagates to the directory service.
func enablePasswordChangeIntegration(c *host) bool {
	return applyLineTransform(c, pamPasswordPath,
		tokenAppendTransform("password", "pam_unix.so", "nis"))
}
