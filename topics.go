package main

import (
	"crypto/rand"
)

// Round prompts. Draws are independent, so repeats across rounds are
// possible and fine.
var topics = []string{
	"Favorite ice cream flavor",
	"A pet",
	"Pizza topping",
	"Travel destination",
	"A superhero",
	"A car brand",
	"A color",
	"Something round",
	"A reason to break up",
	"Something in the fridge",
	"A hobby",
	"An app",
	"Something you forget on vacation",
}

func randomTopic() string {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return topics[int(b[0])%len(topics)]
}
