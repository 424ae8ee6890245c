package tasklist

import "github.com/Makepad-fr/taskboard/internal/model"

// Event is anything the controller reacts to: a user intent or the outcome
// of an Effect.
type Event interface{ event() }

// User intents.
type (
	OpenModal   struct{}
	CancelModal struct{}
	// Submit carries the raw text of the description field.
	Submit struct{ Description string }
	Toggle struct {
		ID        int
		Completed bool
	}
	// RequestDelete carries the id as bound to the row, still unparsed.
	RequestDelete struct{ TaskID string }
	ConfirmDelete struct{ Yes bool }
	Refresh       struct{}
	SubmitToken   struct{ Token string }
)

// Effect outcomes.
type (
	Loaded       struct{ Tasks []model.Task }
	FetchFailed  struct{ Err error }
	Unauthorized struct{}
	Created      struct{ Task *model.Task }
	// CreateFailed carries the server message meant for the user, if any.
	CreateFailed struct {
		Err     error
		Message string
	}
	// Updated reports the PUT outcome; Err is nil on success.
	Updated struct {
		ID  int
		Err error
	}
	Deleted      struct{ ID int }
	DeleteFailed struct {
		ID  int
		Err error
	}
	// LoggedIn carries the list fetched with the accepted token.
	LoggedIn      struct{ Tasks []model.Task }
	LoginRejected struct{}
	LoginFailed   struct{ Err error }
)

func (OpenModal) event()     {}
func (CancelModal) event()   {}
func (Submit) event()        {}
func (Toggle) event()        {}
func (RequestDelete) event() {}
func (ConfirmDelete) event() {}
func (Refresh) event()       {}
func (SubmitToken) event()   {}
func (Loaded) event()        {}
func (FetchFailed) event()   {}
func (Unauthorized) event()  {}
func (Created) event()       {}
func (CreateFailed) event()  {}
func (Updated) event()       {}
func (Deleted) event()       {}
func (DeleteFailed) event()  {}
func (LoggedIn) event()      {}
func (LoginRejected) event() {}
func (LoginFailed) event()   {}
