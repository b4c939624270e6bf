package wire

// Tag bytes. Values 1 through 201 carry an inline small integer with value
// b - 101; every other valid stream byte is one of the tags below.
const (
	tagNil       = 202
	tagFloat     = 203
	tagTrue      = 204
	tagFalse     = 205
	tagString    = 206
	tagTable     = 207
	tagReference = 208
	tagCustom    = 209
	tagProc      = 210
	tagResource  = 211
)

const (
	inlineMin    = -100
	inlineMax    = 100
	inlineOffset = 101
)
