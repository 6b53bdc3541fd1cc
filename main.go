package main

import "controle_vendas/cmd"

func main() {
	cmd.Execute()
}
