package main

import "github.com/forPelevin/lyricgen/internal/cli"

func main() { cli.Main() }
