package paramline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qcmdpc/qcmdpc-dfr/internal/gen"
	"github.com/qcmdpc/qcmdpc-dfr/mdpc"
)

func cpa128(algo mdpc.Algo) mdpc.Config {
	c := mdpc.Config{
		Params: mdpc.Params{BlockLength: 10163, BlockWeight: 71, ErrorWeight: 134},
		Algo:   algo,
	}
	c.SetDefaults()
	return c
}

func TestLineGrayFormat(t *testing.T) {
	l := Line{Decoder: cpa128(mdpc.GrayBGF)}
	require.Equal(t,
		"-DINDEX=2 -DBLOCK_LENGTH=10163 -DBLOCK_WEIGHT=71 -DERROR_WEIGHT=134 -DOUROBOROS=0 "+
			"-DWEAK=0 -DWEAK_P=0 -DERROR_FLOOR=0 -DERROR_FLOOR_P=0 "+
			"-DTHRESHOLD_C0=13.53 -DTHRESHOLD_C1=0.0069722 -DALGO=GRAY_BGF",
		l.String())
}

func TestLineClassicHasNoExtraKeys(t *testing.T) {
	l := Line{Decoder: cpa128(mdpc.Classic), Weak: gen.WeakType2, WeakP: 12}
	require.Equal(t,
		"-DINDEX=2 -DBLOCK_LENGTH=10163 -DBLOCK_WEIGHT=71 -DERROR_WEIGHT=134 -DOUROBOROS=0 "+
			"-DWEAK=2 -DWEAK_P=12 -DERROR_FLOOR=0 -DERROR_FLOOR_P=0 -DALGO=CLASSIC",
		l.String())
}

func TestParseRecoversAlgorithmKeys(t *testing.T) {
	for _, algo := range mdpc.Algos() {
		in := Line{Decoder: cpa128(algo), Floor: gen.FloorNearCodeword, FloorP: 30}
		out, err := Parse(in.String())
		require.NoError(t, err, algo.String())
		require.Equal(t, in.String(), out.String(), algo.String())
		require.Equal(t, in.RunID(), out.RunID())
	}
}

func TestParseOldBackflip2Line(t *testing.T) {
	l, err := Parse("-DINDEX=2 -DBLOCK_LENGTH=12323 -DBLOCK_WEIGHT=71 -DERROR_WEIGHT=134 -DOUROBOROS=0 -DWEAK=0 -DWEAK_P=0 -DERROR_FLOOR=0 -DERROR_FLOOR_P=0 -DTHRESHOLD_A0=4 -DTHRESHOLD_A1=1 -DTHRESHOLD_A2=0.25 -DTHRESHOLD_A3=0.0625 -DTHRESHOLD_A4=0.015625 -DALGO=BACKFLIP2\n")
	require.NoError(t, err)
	require.Equal(t, mdpc.Backflip2, l.Decoder.Algo)
	require.Equal(t, 12323, l.Decoder.BlockLength)
	require.Equal(t, mdpc.DefaultAlphas, l.Decoder.Alphas)
	require.Zero(t, l.Decoder.TTLSaturate)
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"-DINDEX=3 -DALGO=SBS",
		"-DBLOCK_LENGTH=x -DALGO=SBS",
		"-DFOO=1 -DALGO=SBS",
		"BLOCK_LENGTH=1 -DALGO=SBS",
		"-DALGO=NOPE",
		"-DBLOCK_LENGTH",
	} {
		_, err := Parse(s)
		require.Error(t, err, s)
	}
}

func TestIsLine(t *testing.T) {
	require.True(t, IsLine("-DINDEX=2 -DALGO=SBS"))
	require.False(t, IsLine("1000 3:999 >100:1"))
}

func TestRunIDDependsOnParameters(t *testing.T) {
	a := Line{Decoder: cpa128(mdpc.Classic)}
	b := a
	b.Decoder.ErrorWeight = 135
	require.Len(t, a.RunID(), 16)
	require.NotEqual(t, a.RunID(), b.RunID())
}
