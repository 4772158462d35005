package shopping

// Item is one entry of the shopping list.
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// ClearPrompt is the question asked before the whole list is cleared.
const ClearPrompt = "Bạn chắc chắn muốn xoá hết danh sách?"

// Confirmer answers an interactive yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }
