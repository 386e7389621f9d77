// Command app is the MOTK dashboard compiled to WebAssembly:
//
//	GOARCH=wasm GOOS=js go build -o web/app.wasm ./app
package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/kidandcat/motk/internal/ui"
)

func main() {
	base := ""
	if app.IsClient {
		base = app.Window().Get("location").Get("origin").String()
	}
	ui.Routes(ui.NewDeps(base+"/api", &ui.LocalTokens{}))
	app.RunWhenOnBrowser()
}
