package speech

import (
	"bytes"
	"io"
	"time"

	tcmp3 "github.com/tcolgate/mp3"
)

// Duration returns the playing time of MP3 audio by summing its frames
func Duration(audio []byte) (time.Duration, error) {
	var (
		dur     time.Duration
		dec     = tcmp3.NewDecoder(bytes.NewReader(audio))
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return dur, err
		}
		dur += frame.Duration()
	}

	return dur, nil
}
