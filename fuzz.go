// +build gofuzz

package bgtl

func Fuzz(data []byte) int {
	var _, err = NewBundle().
		SetCompiler(New().SetDebugMode(true)).
		AddTemplateString("", string(data)).
		Compile()

	if err != nil {
		return 0
	}

	return 1
}
