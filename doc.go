/*
Package racketbot is a chat-style questionnaire engine that recommends badminton rackets.

It asks a fixed, ordered script of questions (skill level, play style, frame stiffness,
budget), collects the answers into a key/value mapping and forwards them in a single
call to a recommendation service, then keeps the returned product list for display.

# Concept

The conversation is a linear state machine driven by a pure reducer. Submitting an answer
returns the next State plus a list of Effects; the only Effect is the recommendation
call, which the Engine executes through the ports.Recommender adapter. Hosts (terminal
runner, HTTP API, MCP server) persist and render the State.

# Usage

	eng, err := racketbot.New(racketbot.WithRecommender(recommend.NewClient(recommend.DefaultEndpoint)))
	if err != nil {
		log.Fatal(err)
	}

	ctl := racketbot.NewController(eng, "session-123")
	_ = ctl.Initialize(ctx)
	for _, answer := range []string{"初学", "控制型", "中硬", "500"} {
		if err := ctl.SubmitAnswer(ctx, answer); err != nil {
			log.Fatal(err)
		}
	}

	for _, msg := range ctl.State().Transcript {
		fmt.Println(msg.Speaker, msg.Text)
	}
*/
package racketbot
