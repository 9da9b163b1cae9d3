package cloudinit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yairfalse/machine/internal/config"
)

const testKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIexample user@laptop"

func testMachine(args string) config.MachineConfig {
	return config.MachineConfig{
		NewUserName: "admin",
		ScriptURL:   "https://example.com/setup.sh",
		ScriptDir:   "/opt/machine",
		ScriptPath:  "/opt/machine/setup.sh",
		ScriptArgs:  args,
	}
}

func TestRender_Document(t *testing.T) {
	got := Render(testMachine(`--role "web"`), testKey, "web-1.example.com")

	want := `#cloud-config
users:
  - name: admin
    groups: sudo
    shell: /bin/bash
    sudo: ['ALL=(ALL) NOPASSWD:ALL']
    ssh-authorized-keys:
      - ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIexample user@laptop
runcmd:
  - mkdir -p /opt/machine
  - curl -L https://example.com/setup.sh -o /opt/machine/setup.sh
  - chmod +x /opt/machine/setup.sh
  - [su, -c, "env MACHINE_SCRIPT_URL='https://example.com/setup.sh' MACHINE_SCRIPT_DIR='/opt/machine' MACHINE_FQDN='web-1.example.com' /opt/machine/setup.sh --role \"web\"", -, admin]
`
	assert.Equal(t, want, got)
}

func TestRender_Deterministic(t *testing.T) {
	m := testMachine("x")
	assert.Equal(t, Render(m, testKey, "h"), Render(m, testKey, "h"))
}

func TestEscapeArgs(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a "b" c`, `a \"b\" c`},
		{``, ``},
		{`no quotes`, `no quotes`},
		{`"`, `\"`},
		{`it's $HOME and ` + "`id`", `it's $HOME and ` + "`id`"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeArgs(tt.in))
		})
	}
}

func TestRender_EscapesEveryQuote(t *testing.T) {
	for _, args := range []string{``, `"`, `a "b" c`, `"""`, `--name "x" --label "y z"`} {
		t.Run(args, func(t *testing.T) {
			k := strings.Count(args, `"`)
			line := suLine(t, Render(testMachine(args), testKey, "h"))

			assert.Equal(t, k, strings.Count(line, `\"`))
			// The su command opens and closes its string once; every other
			// quote in the line is escaped.
			assert.Equal(t, 2, strings.Count(line, `"`)-strings.Count(line, `\"`))
		})
	}
}

func TestRender_ParsesAsYAML(t *testing.T) {
	args := `a "b" c`
	doc := Render(testMachine(args), testKey, "web-1.example.com")

	var parsed struct {
		Users []struct {
			Name              string   `yaml:"name"`
			Groups            string   `yaml:"groups"`
			Shell             string   `yaml:"shell"`
			Sudo              []string `yaml:"sudo"`
			SSHAuthorizedKeys []string `yaml:"ssh-authorized-keys"`
		} `yaml:"users"`
		RunCmd []any `yaml:"runcmd"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(doc), &parsed))

	require.Len(t, parsed.Users, 1)
	u := parsed.Users[0]
	assert.Equal(t, "admin", u.Name)
	assert.Equal(t, "sudo", u.Groups)
	assert.Equal(t, "/bin/bash", u.Shell)
	assert.Equal(t, []string{"ALL=(ALL) NOPASSWD:ALL"}, u.Sudo)
	assert.Equal(t, []string{testKey}, u.SSHAuthorizedKeys)

	require.Len(t, parsed.RunCmd, 4)
	assert.Equal(t, "mkdir -p /opt/machine", parsed.RunCmd[0])

	su, ok := parsed.RunCmd[3].([]any)
	require.True(t, ok, "su command should be a sequence")
	require.Len(t, su, 5)
	assert.Equal(t, "su", su[0])
	assert.Equal(t, "-c", su[1])
	assert.True(t, strings.HasSuffix(su[2].(string), "/opt/machine/setup.sh "+args))
	assert.Equal(t, "-", su[3])
	assert.Equal(t, "admin", su[4])
}

func suLine(t *testing.T, doc string) string {
	t.Helper()
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "  - [su, -c, ") {
			return line
		}
	}
	t.Fatal("su line not found")
	return ""
}
