package main

import _ "embed"

//go:embed player.html
var playerHTML string
