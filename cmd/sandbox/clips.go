package main

import (
	"time"

	"github.com/milk9111/collide/audio"
)

const sampleRate = 44100

// stockClips synthesizes every clip the embedded materials reference.
func stockClips() *audio.ClipBank {
	bank := audio.NewClipBank(sampleRate)
	bank.AddPCM("thud", audio.Noise(sampleRate, 250*time.Millisecond, 25, 1))
	bank.AddPCM("knock", audio.Noise(sampleRate, 120*time.Millisecond, 45, 2))
	bank.AddPCM("tick", audio.Noise(sampleRate, 40*time.Millisecond, 90, 3))
	bank.AddPCM("scrape", audio.Noise(sampleRate, 500*time.Millisecond, 0, 4))
	bank.AddPCM("rumble", audio.Tone(sampleRate, time.Second, 55, 0.6))
	bank.AddPCM("boing", audio.Tone(sampleRate, 300*time.Millisecond, 180, 0.9))
	bank.AddPCM("clang", audio.Tone(sampleRate, 400*time.Millisecond, 880, 0.2))
	return bank
}
