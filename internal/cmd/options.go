package cmd

import "io"

// Options are the dashnex command line options
type Options struct {
	Config  string `short:"c" long:"config" description:"config URL (yaml)" env:"DASHNEX_CONFIG"`
	Verbose bool   `short:"v" long:"verbose" description:"debug logging"`

	Login      LoginCommand      `command:"login" description:"sign in through the browser and store tokens"`
	URL        URLCommand        `command:"url" description:"print the authorization URL"`
	Exchange   ExchangeCommand   `command:"exchange" description:"exchange an authorization code for tokens"`
	Status     StatusCommand     `command:"status" description:"show whether tokens are stored"`
	Whoami     WhoamiCommand     `command:"whoami" description:"show the authenticated user"`
	Activation ActivationCommand `command:"activation" description:"manage product activations"`
	Logout     LogoutCommand     `command:"logout" description:"remove stored tokens"`

	out io.Writer
}

// ActivationCommand groups activation subcommands
type ActivationCommand struct {
	Status       ActivationStatusCommand `command:"status" description:"list activations of a product"`
	Activate     ActivateCommand         `command:"activate" description:"activate a domain"`
	Revoke       RevokeCommand           `command:"revoke" description:"revoke an activation by id"`
	RevokeDomain RevokeDomainCommand     `command:"revoke-domain" description:"revoke the activation of a domain"`
}

// NewOptions creates options writing command output to out
func NewOptions(out io.Writer) *Options {
	ret := &Options{out: out}
	for _, cmd := range []*command{
		&ret.Login.command, &ret.URL.command, &ret.Exchange.command, &ret.Status.command,
		&ret.Whoami.command, &ret.Logout.command,
		&ret.Activation.Status.command, &ret.Activation.Activate.command,
		&ret.Activation.Revoke.command, &ret.Activation.RevokeDomain.command,
	} {
		cmd.options = ret
	}
	return ret
}
