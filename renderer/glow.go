// Package renderer provides rendering utilities.
package renderer

import (
	"fmt"
	"strconv"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cyberloops/systems"
)

// glowFragmentTemplate sums every live particle's contribution per pixel.
// Particle positions arrive in curve space (origin at the canvas centre,
// y down) and are mapped into fragment space here.
const glowFragmentTemplate = `#version 330

in vec2 fragTexCoord;
in vec4 fragColor;

out vec4 finalColor;

#define MAX_PARTICLE_COUNT %d

uniform vec2 resolution;
uniform float particleCount;
uniform vec3 particles[MAX_PARTICLE_COUNT];
uniform vec3 colors[MAX_PARTICLE_COUNT];

const float glowMult = %s;

void main() {
    vec2 st = gl_FragCoord.xy / resolution.xy;
    float aspect = resolution.x / resolution.y;
    st.x *= aspect;

    vec3 col = vec3(0.0);
    for (int i = 0; i < MAX_PARTICLE_COUNT; i++) {
        if (float(i) >= particleCount) {
            break;
        }
        vec3 particle = particles[i];
        vec2 pos = (particle.xy + resolution.xy / 2.0) / resolution.xy;
        pos.y = 1.0 - pos.y;
        pos.x *= aspect;

        col += colors[i] / distance(st, pos) * glowMult * particle.z;
    }

    finalColor = vec4(col, 1.0);
}
`

// GlowFragmentSource returns the glow fragment shader with the particle
// capacity compiled in.
func GlowFragmentSource(maxParticles int, multiplier float64) string {
	mult := strconv.FormatFloat(multiplier, 'f', -1, 64)
	if _, err := strconv.Atoi(mult); err == nil {
		mult += ".0" // GLSL float literal
	}
	return fmt.Sprintf(glowFragmentTemplate, maxParticles, mult)
}

// GlowRenderer draws the particle glow field into an offscreen target and
// composites it onto the screen.
type GlowRenderer struct {
	shader        rl.Shader
	target        rl.RenderTexture2D
	resolutionLoc int32
	countLoc      int32
	particlesLoc  int32
	colorsLoc     int32

	capacity      int
	width, height int32
}

// NewGlowRenderer compiles the glow shader and allocates a width x height
// target. Must be called after the raylib window is created.
func NewGlowRenderer(width, height, capacity int, multiplier float64) (*GlowRenderer, error) {
	shader := rl.LoadShaderFromMemory("", GlowFragmentSource(capacity, multiplier))
	if !rl.IsShaderValid(shader) {
		return nil, fmt.Errorf("compiling glow shader")
	}

	g := &GlowRenderer{
		shader:        shader,
		resolutionLoc: rl.GetShaderLocation(shader, "resolution"),
		countLoc:      rl.GetShaderLocation(shader, "particleCount"),
		particlesLoc:  rl.GetShaderLocation(shader, "particles"),
		colorsLoc:     rl.GetShaderLocation(shader, "colors"),
		capacity:      capacity,
	}
	if err := g.Resize(width, height); err != nil {
		rl.UnloadShader(shader)
		return nil, err
	}
	return g, nil
}

// Resize allocates a target at the new size and then discards the old one.
// On error the previous target stays in place.
func (g *GlowRenderer) Resize(width, height int) error {
	target, err := replaceTarget(g.target, width, height, rl.LoadRenderTexture, rl.UnloadRenderTexture)
	if err != nil {
		return err
	}
	g.target = target
	g.width, g.height = int32(width), int32(height)

	rl.SetShaderValue(g.shader, g.resolutionLoc, []float32{float32(width), float32(height)}, rl.ShaderUniformVec2)
	return nil
}

// replaceTarget loads a width x height target and, only once that succeeds,
// unloads cur. It returns cur unchanged with an error if the load fails.
func replaceTarget(
	cur rl.RenderTexture2D,
	width, height int,
	load func(w, h int32) rl.RenderTexture2D,
	unload func(rl.RenderTexture2D),
) (rl.RenderTexture2D, error) {
	if width <= 0 || height <= 0 {
		return cur, fmt.Errorf("glow target size %dx%d", width, height)
	}
	next := load(int32(width), int32(height))
	if next.ID == 0 {
		return cur, fmt.Errorf("allocating %dx%d glow target", width, height)
	}
	if cur.ID != 0 {
		unload(cur)
	}
	return next, nil
}

// Render runs the shader over the offscreen target with the given payload.
func (g *GlowRenderer) Render(u systems.Uniforms) {
	n := min(u.ParticleCount, g.capacity)

	rl.BeginTextureMode(g.target)
	rl.ClearBackground(rl.Black)
	rl.BeginShaderMode(g.shader)

	rl.SetShaderValue(g.shader, g.countLoc, []float32{float32(n)}, rl.ShaderUniformFloat)
	if len(u.Particles) >= 3*g.capacity && len(u.Colors) >= 3*g.capacity {
		rl.SetShaderValueV(g.shader, g.particlesLoc, u.Particles[:3*g.capacity], rl.ShaderUniformVec3, int32(g.capacity))
		rl.SetShaderValueV(g.shader, g.colorsLoc, u.Colors[:3*g.capacity], rl.ShaderUniformVec3, int32(g.capacity))
	}

	rl.DrawRectangle(0, 0, g.width, g.height, rl.White)

	rl.EndShaderMode()
	rl.EndTextureMode()
}

// Draw composites the last rendered glow onto the current frame.
func (g *GlowRenderer) Draw() {
	// Render textures are stored upside down.
	src := rl.Rectangle{Width: float32(g.width), Height: -float32(g.height)}
	rl.DrawTextureRec(g.target.Texture, src, rl.Vector2{}, rl.White)
}

// Texture returns the offscreen target, for export.
func (g *GlowRenderer) Texture() rl.Texture2D {
	return g.target.Texture
}

// Unload frees GPU resources.
func (g *GlowRenderer) Unload() {
	if g.target.ID != 0 {
		rl.UnloadRenderTexture(g.target)
		g.target = rl.RenderTexture2D{}
	}
	rl.UnloadShader(g.shader)
}
