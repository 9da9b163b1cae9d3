// Package cloudinit renders the #cloud-config user data that bootstraps a
// new droplet: one sudo user plus a setup script downloaded and run as that
// user.
//
// Inputs are assumed well-formed. The SSH key lookup and config loading
// steps validate them before Render is called.
package cloudinit

import (
	"strings"
	"text/template"

	"github.com/yairfalse/machine/internal/config"
)

// Environment variables exported to the setup script.
const (
	EnvScriptURL = "MACHINE_SCRIPT_URL"
	EnvScriptDir = "MACHINE_SCRIPT_DIR"
	EnvFQDN      = "MACHINE_FQDN"
)

var userDataTemplate = template.Must(template.New("user-data").Parse(`#cloud-config
users:
  - name: {{.User}}
    groups: sudo
    shell: /bin/bash
    sudo: ['ALL=(ALL) NOPASSWD:ALL']
    ssh-authorized-keys:
      - {{.SSHKey}}
runcmd:
  - mkdir -p {{.ScriptDir}}
  - curl -L {{.ScriptURL}} -o {{.ScriptPath}}
  - chmod +x {{.ScriptPath}}
  - [su, -c, "env ` + EnvScriptURL + `='{{.ScriptURL}}' ` + EnvScriptDir + `='{{.ScriptDir}}' ` + EnvFQDN + `='{{.FQDN}}' {{.ScriptPath}} {{.Args}}", -, {{.User}}]
`))

type userData struct {
	User       string
	SSHKey     string
	ScriptURL  string
	ScriptDir  string
	ScriptPath string
	FQDN       string
	Args       string
}

// Render returns the user data for a machine of the given config, reachable
// with sshPublicKey and named fqdn.
func Render(cfg config.MachineConfig, sshPublicKey, fqdn string) string {
	var b strings.Builder
	// The template only formats strings into a buffer; it cannot fail.
	_ = userDataTemplate.Execute(&b, userData{
		User:       cfg.NewUserName,
		SSHKey:     sshPublicKey,
		ScriptURL:  cfg.ScriptURL,
		ScriptDir:  cfg.ScriptDir,
		ScriptPath: cfg.ScriptPath,
		FQDN:       fqdn,
		Args:       EscapeArgs(cfg.ScriptArgs),
	})
	return b.String()
}

// EscapeArgs prefixes every double quote in args with a backslash so args
// stays inside the double-quoted su command. Nothing else is escaped:
// single quotes, $, backticks and backslashes pass through unchanged.
func EscapeArgs(args string) string {
	return strings.ReplaceAll(args, `"`, `\"`)
}
