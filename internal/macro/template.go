package macro

import "strings"

// cursorMark marks where the cursor goes in a new macro.
const cursorMark = "#cursor"

const defaultTemplate = `-- macro
-- context, debug and util are injected; see "macrorunner help run"

local doc = context:getFile(0)
local text = doc:getText()

#cursor

doc:setText(text)
`

// Template returns the source of a new macro and the byte offset where
// editing should start.
func Template() (string, int) {
	return expandTemplate(defaultTemplate)
}

func expandTemplate(text string) (string, int) {
	idx := strings.Index(text, cursorMark)
	if idx == -1 {
		return text, max(len(text)-1, 0)
	}
	return strings.Replace(text, cursorMark, "", 1), idx
}
