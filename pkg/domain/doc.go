/*
Package domain contains the core domain models of the racketbot questionnaire.

It defines the entities of the conversation state machine, such as the Script of prompts,
the Transcript messages and the conversation State. This package is kept pure and free
of external dependencies like I/O or persistence.

# Key Entities

  - PromptSpec / Script: the fixed, ordered questions.
  - Message: one speaker-tagged transcript line.
  - Answers: the key to value mapping sent to the recommendation service.
  - State: the runtime snapshot of a session (Phase, Index, Transcript, Answers).
  - Effect: a structural representation of what the host should execute.
*/
package domain
