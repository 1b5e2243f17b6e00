package imaging

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const cwebpTimeout = 10 * time.Second

// CWebPAvailable reports whether the cwebp binary is on PATH.
func CWebPAvailable() bool {
	_, err := exec.LookPath("cwebp")
	return err == nil
}

// CWebPResizer scales with CatmullRom and encodes WebP through the cwebp binary.
type CWebPResizer struct {
	Quality int
}

func (r *CWebPResizer) Resize(ctx context.Context, src []byte, width int) ([]byte, string, error) {
	img, err := decode(src)
	if err != nil {
		return nil, "", err
	}
	img = scaleCatmullRom(img, width)

	tmpIn, err := os.CreateTemp("", "emlak-img-*.png")
	if err != nil {
		return nil, "", err
	}
	tmpOut := tmpIn.Name() + ".webp"
	defer func() {
		_ = os.Remove(tmpIn.Name())
		_ = os.Remove(tmpOut)
	}()
	if err := png.Encode(tmpIn, img); err != nil {
		_ = tmpIn.Close()
		return nil, "", err
	}
	if err := tmpIn.Close(); err != nil {
		return nil, "", err
	}

	ctx, cancel := context.WithTimeout(ctx, cwebpTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "cwebp", "-quiet", "-q", strconv.Itoa(r.Quality), tmpIn.Name(), "-o", tmpOut)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, "", fmt.Errorf("cwebp failed: %w (%s)", err, strings.TrimSpace(string(output)))
	}
	data, err := os.ReadFile(tmpOut)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty webp output")
	}
	return data, "image/webp", nil
}
