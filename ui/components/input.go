package components

import (
	"github.com/Rorical/RoriKB/ui/styles"
)

// RenderInput frames the input box view.
func RenderInput(inputView string, width int) string {
	inputStyle := styles.InputStyle(width)
	return inputStyle.Render(inputView)
}
