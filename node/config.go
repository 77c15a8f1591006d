// Copyright (C) 2021 Aung Maw
// Licensed under the GNU General Public License v3.0

package node

type Config struct {
	Debug   bool
	Datadir string
	APIPort int

	// Minter is the hex encoded account set as minter at genesis
	Minter string
}

var DefaultConfig = Config{
	APIPort: 9040,
	Minter:  "01",
}
