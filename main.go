package main

import "github.com/Vallit0/asistencia-senoriales/cmd"

func main() {
	cmd.Execute()
}
