package loader

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/drawcall"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

var errNoImageSource = errors.New("image has neither uri nor bufferView")

// imageRole is how an image is sampled: as sRGB color or as linear data.
type imageRole int

const (
	roleUnused imageRole = iota
	roleSRGB
	roleLinear
)

func (r imageRole) String() string {
	switch r {
	case roleSRGB:
		return "sRGB"
	case roleLinear:
		return "linear"
	default:
		return "unused"
	}
}

// Fallback pixels bound to material slots that have no texture.
var (
	fallbackWhite = [4]byte{255, 255, 255, 255}
	fallbackBlack = [4]byte{0, 0, 0, 255}
	// fallbackNormal is a flat tangent-space normal.
	fallbackNormal = [4]byte{128, 128, 255, 255}
	// fallbackGray stands in for a texture whose image is only provided by an extension.
	fallbackGray = [4]byte{128, 128, 128, 255}
)

// materialSlot is one texture reference of a material along with the unit, role and fallback it uses.
type materialSlot struct {
	info     *gltfTextureInfo
	unit     uint32
	role     imageRole
	fallback gpu.Texture
}

// slots lists the five texture references of m in unit order.
func (im *gltfImport) slots(m gltfMaterial) [drawcall.MaterialTextureCount]materialSlot {
	var base, mr, emissive *gltfTextureInfo
	var normal, occlusion *gltfTextureInfo
	if pbr := m.PbrMetallicRoughness; pbr != nil {
		base, mr = pbr.BaseColorTexture, pbr.MetallicRoughnessTexture
	}
	if m.NormalTexture != nil {
		normal = &m.NormalTexture.gltfTextureInfo
	}
	if m.OcclusionTexture != nil {
		occlusion = &m.OcclusionTexture.gltfTextureInfo
	}
	emissive = m.EmissiveTexture

	return [drawcall.MaterialTextureCount]materialSlot{
		{base, shader.UnitBaseColor, roleSRGB, im.white},
		{mr, shader.UnitMetallicRoughness, roleLinear, im.white},
		{normal, shader.UnitNormal, roleLinear, im.blue},
		{occlusion, shader.UnitOcclusion, roleLinear, im.white},
		{emissive, shader.UnitEmissive, roleSRGB, im.black},
	}
}

// textureSource resolves a texture reference to its image index, -1 when the texture has no source.
func (im *gltfImport) textureSource(info *gltfTextureInfo) (int, error) {
	if info.TexCoord != 0 {
		return 0, fmt.Errorf("%w: texCoord %d", ErrUnsupportedTexCoord, info.TexCoord)
	}
	if info.Index < 0 || info.Index >= len(im.doc.Textures) {
		return 0, fmt.Errorf("texture %d: %w", info.Index, ErrIndexOutOfRange)
	}
	src := im.doc.Textures[info.Index].Source
	if src == nil {
		return -1, nil
	}
	if *src < 0 || *src >= len(im.doc.Images) {
		return 0, fmt.Errorf("texture %d: image %d: %w", info.Index, *src, ErrIndexOutOfRange)
	}
	return *src, nil
}

// imageRoles assigns every referenced image its role. Images not referenced by any material stay unused and
// are never decoded.
//
// Returns:
//   - []imageRole: one role per document image
//   - error: error if an image is referenced in both roles or a reference is invalid
func (im *gltfImport) imageRoles() ([]imageRole, error) {
	roles := make([]imageRole, len(im.doc.Images))
	for mi, m := range im.doc.Materials {
		for _, slot := range im.slots(m) {
			if slot.info == nil {
				continue
			}
			img, err := im.textureSource(slot.info)
			if err != nil {
				return nil, fmt.Errorf("material %d: %w", mi, err)
			}
			if img < 0 {
				continue
			}
			if roles[img] != roleUnused && roles[img] != slot.role {
				return nil, fmt.Errorf("image %d: %w: %s and %s", img, ErrImageRoleConflict, roles[img], slot.role)
			}
			roles[img] = slot.role
		}
	}
	return roles, nil
}

// imageBytes returns the encoded bytes and MIME type of an image.
func (im *gltfImport) imageBytes(index int) ([]byte, string, error) {
	img := im.doc.Images[index]
	switch {
	case img.URI != "":
		data, err := im.p.resolve(img.URI, false)
		if err != nil {
			return nil, "", err
		}
		return data, common.Coalesce(img.MimeType, dataURIMimeType(img.URI)), nil
	case img.BufferView != nil:
		data, err := im.p.bufferViewBytes(*img.BufferView)
		return data, img.MimeType, err
	default:
		return nil, "", errNoImageSource
	}
}

// decodeImages decodes every used image and builds its mip chain on the worker pool. No driver call is made
// from the workers.
//
// Parameters:
//   - roles: the role of every image
//
// Returns:
//   - [][]common.TextureStagingData: the mip chain of every used image, nil for unused ones
//   - error: the first error in image order
func (im *gltfImport) decodeImages(roles []imageRole) ([][]common.TextureStagingData, error) {
	textures := make([]*common.ImportedTexture, len(roles))
	for i, role := range roles {
		if role == roleUnused {
			continue
		}
		data, mime, err := im.imageBytes(i)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		textures[i] = &common.ImportedTexture{
			Name:     common.Coalesce(im.doc.Images[i].Name, "image "+strconv.Itoa(i)),
			Data:     data,
			MimeType: mime,
			SRGB:     role == roleSRGB,
		}
	}

	chains := make([][]common.TextureStagingData, len(roles))
	errs := make([]error, len(roles))
	var wg sync.WaitGroup
	for i, tex := range textures {
		if tex == nil {
			continue
		}
		wg.Add(1)
		decode := func() (any, error) {
			defer wg.Done()
			chains[i], errs[i] = tex.DecodeMipChain()
			return nil, errs[i]
		}
		if im.pool == nil {
			decode()
			continue
		}
		im.pool.SubmitTask(worker.Task{ID: i, Do: decode})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
	}
	return chains, nil
}

// uploadTexture creates a texture and uploads every level of chain to it.
func (im *gltfImport) uploadTexture(chain []common.TextureStagingData, srgb bool) gpu.Texture {
	format := gpu.FormatRGBA8
	if srgb {
		format = gpu.FormatSRGB8Alpha8
	}

	tex := im.ctx.CreateTexture()
	im.res.Textures = append(im.res.Textures, tex)
	im.ctx.ActiveTexture(0)
	im.ctx.BindTexture(tex)
	for level, l := range chain {
		im.ctx.TexImage2D(level, format, int(l.Width), int(l.Height), l.Pixels)
	}
	im.ctx.TexMaxLevel(len(chain) - 1)
	return tex
}

// extractTextures creates the fallback textures and one texture per used image.
func (im *gltfImport) extractTextures() error {
	im.white = im.uploadTexture(common.SolidTexture(fallbackWhite), false)
	im.black = im.uploadTexture(common.SolidTexture(fallbackBlack), false)
	im.blue = im.uploadTexture(common.SolidTexture(fallbackNormal), false)
	im.gray = im.uploadTexture(common.SolidTexture(fallbackGray), false)

	roles, err := im.imageRoles()
	if err != nil {
		return err
	}
	chains, err := im.decodeImages(roles)
	if err != nil {
		return err
	}

	im.textures = make([]gpu.Texture, len(roles))
	for i, chain := range chains {
		if chain == nil {
			continue
		}
		im.textures[i] = im.uploadTexture(chain, roles[i] == roleSRGB)
	}
	im.ctx.BindTexture(0)
	return nil
}

// extractSamplers creates one sampler per declared sampler plus the default sampler used by textures that do
// not name one.
func (im *gltfImport) extractSamplers() {
	newSampler := func(s common.SamplerStagingData) gpu.Sampler {
		smp := im.ctx.CreateSampler()
		im.res.Samplers = append(im.res.Samplers, smp)
		im.ctx.SamplerParameters(smp, s.MagFilter, s.MinFilter, s.WrapS, s.WrapT)
		return smp
	}

	im.samplers = make([]gpu.Sampler, len(im.doc.Samplers))
	for i, s := range im.doc.Samplers {
		mag := gltfFilter(s.MagFilter, gpu.FilterLinear)
		if mag != gpu.FilterNearest {
			mag = gpu.FilterLinear
		}
		im.samplers[i] = newSampler(common.SamplerStagingData{
			MagFilter: mag,
			MinFilter: gltfFilter(s.MinFilter, gpu.FilterLinearMipmapLinear),
			WrapS:     gltfWrap(s.WrapS),
			WrapT:     gltfWrap(s.WrapT),
		})
	}
	im.defaultSampler = newSampler(common.DefaultSamplerStagingData)
}

// binding resolves one material slot to the texture and sampler bound on its unit.
func (im *gltfImport) binding(slot materialSlot) (drawcall.TextureBinding, error) {
	b := drawcall.TextureBinding{Unit: slot.unit, Texture: slot.fallback, Sampler: im.defaultSampler}
	if slot.info == nil {
		return b, nil
	}

	img, err := im.textureSource(slot.info)
	if err != nil {
		return b, err
	}
	if img < 0 {
		b.Texture = im.gray
	} else {
		b.Texture = im.textures[img]
	}

	if s := im.doc.Textures[slot.info.Index].Sampler; s != nil {
		if *s < 0 || *s >= len(im.samplers) {
			return b, fmt.Errorf("texture %d: sampler %d: %w", slot.info.Index, *s, ErrIndexOutOfRange)
		}
		b.Sampler = im.samplers[*s]
	}
	return b, nil
}

// materialUniform fills the uniform block of a material from its factors.
func materialUniform(m gltfMaterial) shader.GPUMaterialUniform {
	u := shader.DefaultMaterialUniform()
	if pbr := m.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			u.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			u.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			u.RoughnessFactor = *pbr.RoughnessFactor
		}
	}
	if m.NormalTexture != nil && m.NormalTexture.Scale != nil {
		u.NormalScale = *m.NormalTexture.Scale
	}
	if m.OcclusionTexture != nil && m.OcclusionTexture.Strength != nil {
		u.OcclusionStrength = *m.OcclusionTexture.Strength
	}
	if e := m.EmissiveFactor; e != nil {
		u.EmissiveFactor = [4]float32{e[0], e[1], e[2], 1}
	}
	return u
}

// extractMaterials builds the binding of every declared material followed by the implicit default material.
// Uniform blocks share one arena aligned to the driver's uniform buffer offset alignment.
//
// Returns:
//   - []drawcall.MaterialBinding: len(materials)+1 bindings
//   - error: error if a texture reference is invalid
func (im *gltfImport) extractMaterials() ([]drawcall.MaterialBinding, error) {
	uniforms := arena.NewArena(im.ctx,
		arena.WithTarget(gpu.BufferTargetUniform),
		arena.WithUsage(gpu.UsageStaticDraw),
		arena.WithAlignment(max(im.ctx.Limits().UniformBufferOffsetAlignment, 1)),
		arena.WithGrowthPolicy(im.growth),
	)
	im.res.Arenas = append(im.res.Arenas, uniforms)

	materials := append(im.doc.Materials[:len(im.doc.Materials):len(im.doc.Materials)], gltfMaterial{Name: "default"})
	bindings := make([]drawcall.MaterialBinding, len(materials))
	for mi, m := range materials {
		var mb drawcall.MaterialBinding
		for i, slot := range im.slots(m) {
			tb, err := im.binding(slot)
			if err != nil {
				return nil, fmt.Errorf("material %d: %w", mi, err)
			}
			mb.Textures[i] = tb
		}

		u := materialUniform(m)
		buf, offset := uniforms.Allocate(u.Marshal())
		mb.UniformBuffer = buf
		mb.UniformOffset = offset
		mb.UniformSize = u.Size()
		mb.UniformBinding = shader.MaterialBlockBinding
		bindings[mi] = mb
	}
	im.ctx.BindBuffer(gpu.BufferTargetUniform, 0)
	return bindings, nil
}
