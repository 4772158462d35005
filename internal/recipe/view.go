package recipe

// FetchState is the lifecycle of the one recipe request a view makes.
type FetchState int

const (
	FetchNotStarted FetchState = iota
	FetchInFlight
	FetchDone
	FetchFailed
)

func (s FetchState) String() string {
	switch s {
	case FetchNotStarted:
		return "not_started"
	case FetchInFlight:
		return "in_flight"
	case FetchDone:
		return "done"
	case FetchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is the state of one mounted recipe screen. A new View is created every
// time the user enters the recipe screen; it requests recipes at most once.
type View struct {
	ingredients []string
	state       FetchState
	recipes     []Recipe
	errMsg      string
	expandedID  string
}

// NewView creates a view for the given ingredient names.
func NewView(ingredients []string) *View {
	names := make([]string, len(ingredients))
	copy(names, ingredients)
	return &View{ingredients: names}
}

// Ingredients returns the names the view requests recipes for.
func (v *View) Ingredients() []string {
	out := make([]string, len(v.ingredients))
	copy(out, v.ingredients)
	return out
}

// State returns the fetch state of the view.
func (v *View) State() FetchState { return v.state }

// Start moves the view to FetchInFlight. It reports false if a request was
// already started, in which case the caller must not issue another one.
func (v *View) Start() bool {
	if v.state != FetchNotStarted {
		return false
	}
	v.state = FetchInFlight
	return true
}

// Complete stores the recipes of the finished request.
func (v *View) Complete(recipes []Recipe) {
	if v.state != FetchInFlight {
		return
	}
	v.recipes = recipes
	v.state = FetchDone
}

// Fail records the user-facing message of a failed request.
func (v *View) Fail(message string) {
	if v.state != FetchInFlight {
		return
	}
	v.errMsg = message
	v.state = FetchFailed
}

// Error returns the user-facing message of a failed request.
func (v *View) Error() string { return v.errMsg }

// Recipes returns a copy of the loaded recipes.
func (v *View) Recipes() []Recipe {
	out := make([]Recipe, len(v.recipes))
	copy(out, v.recipes)
	return out
}

// Recipe looks a loaded recipe up by id.
func (v *View) Recipe(id string) (Recipe, bool) {
	for _, r := range v.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

// Toggle expands the recipe with the given id, collapsing any other. Toggling
// the expanded recipe collapses it.
func (v *View) Toggle(id string) {
	if v.expandedID == id {
		v.expandedID = ""
		return
	}
	if _, ok := v.Recipe(id); !ok {
		return
	}
	v.expandedID = id
}

// ExpandedID returns the id of the expanded recipe, or "" if none is.
func (v *View) ExpandedID() string { return v.expandedID }
