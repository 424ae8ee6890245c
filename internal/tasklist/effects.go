package tasklist

// Effect is network or storage work the controller asks its host to run.
// The host reports the result back as an Event.
type Effect interface{ effect() }

type (
	// Fetch reloads the whole list: Loaded, FetchFailed or Unauthorized.
	Fetch struct{}
	// Create posts a validated description: Created or CreateFailed.
	Create struct{ Description string }
	// Update confirms a speculative completion change: Updated.
	Update struct {
		ID        int
		Completed bool
	}
	// Delete removes a confirmed task: Deleted or DeleteFailed.
	Delete struct{ ID int }
	// Login tries a token with a fetch and stores it only once the server
	// accepts it: LoggedIn, LoginRejected or LoginFailed.
	Login struct{ Token string }
)

func (Fetch) effect()  {}
func (Create) effect() {}
func (Update) effect() {}
func (Delete) effect() {}
func (Login) effect()  {}
