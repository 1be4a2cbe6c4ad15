package main

import launcher "leaderboard-launcher/internal/app"

func main() {
	launcher.Main()
}
