// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package commands dispatches /pokerbot subcommands to the poker engine.

	rt := commands.NewRouter(engine, commands.ImagesFromBaseURL(cfg.ImageBaseURL, scale))
	env := rt.Dispatch(ctx, cmd)

# Subcommands

	deal|open [subject]  public announcement with vote buttons
	vote <n>             private confirmation, "voted" vs "changed your vote"
	tally                public list of voters (public even when empty)
	reveal               public results: nobody voted, unanimous, or split
	reset                public notice that the round was cleared
	help                 private help text

Anything else gets a private "Invalid command" reply.

# Visibility

Every Envelope is public (whole channel) or private (invoking user).
User mistakes such as a second deal or an off-scale vote are private.
Unexpected storage errors are logged and answered with a private
"try again" message.
*/
package commands
