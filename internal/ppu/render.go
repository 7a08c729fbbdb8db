package ppu

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	p.cycleCount++
	p.tick()

	rendering := p.renderingEnabled()
	visibleLine := p.scanline < ScreenHeight
	preLine := p.scanline == preRenderScanline
	renderLine := visibleLine || preLine
	dot := p.cycle

	if renderLine && rendering {
		p.backgroundDot(dot, preLine)
		p.spriteDot(dot, visibleLine)
	}

	if visibleLine && dot >= 1 && dot <= ScreenWidth {
		p.renderPixel(dot-1, p.scanline, rendering)
	}

	switch {
	case p.scanline == vblankScanline && dot == 1:
		p.front, p.back = p.back, p.front
		if !p.suppressVBL {
			p.ppuStatus |= statusVBlank
		}
		p.suppressVBL = false
		p.updateNMI()
	case preLine && dot == 1:
		p.ppuStatus &^= statusVBlank | statusSprite0Hit | statusOverflow
		p.updateNMI()
	}
}

// tick moves to the next dot, skipping the last dot of the pre-render line
// on odd frames while rendering.
func (p *PPU) tick() {
	if p.scanline == preRenderScanline && p.cycle == 339 && p.oddFrame && p.renderingEnabled() {
		p.cycle = 340
	}

	p.cycle++
	if p.cycle < DotsPerScanline {
		return
	}
	p.cycle = 0
	p.scanline++
	if p.scanline < ScanlinesPerFrame {
		return
	}
	p.scanline = 0
	p.frameCount++
	p.oddFrame = !p.oddFrame
}

// backgroundDot runs the background fetch and shift schedule for one dot.
func (p *PPU) backgroundDot(dot int, preLine bool) {
	fetchDot := (dot >= 1 && dot <= 256) || (dot >= 321 && dot <= 336)

	if (dot >= 2 && dot <= 257) || (dot >= 322 && dot <= 337) {
		p.shiftBackground()
		if dot%8 == 1 {
			p.reloadBackground()
		}
	}

	if fetchDot {
		switch dot % 8 {
		case 1:
			p.ntLatch = p.read(0x2000 | p.v&0x0FFF)
		case 3:
			p.fetchAttribute()
		case 5:
			p.patLoLatch = p.read(p.backgroundPatternAddress())
		case 7:
			p.patHiLatch = p.read(p.backgroundPatternAddress() + 8)
		case 0:
			p.incrementX()
		}
	}

	switch {
	case dot == 256:
		p.incrementY()
	case dot == 257:
		p.copyX()
	case dot == 337 || dot == 339:
		p.ntLatch = p.read(0x2000 | p.v&0x0FFF)
	case preLine && dot >= 280 && dot <= 304:
		p.copyY()
	}
}

func (p *PPU) backgroundPatternAddress() uint16 {
	table := uint16(0)
	if p.ppuCtrl&ctrlBGTable != 0 {
		table = 0x1000
	}
	fineY := (p.v >> 12) & 7
	return table + uint16(p.ntLatch)*16 + fineY
}

func (p *PPU) fetchAttribute() {
	v := p.v
	address := 0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07
	shift := ((v >> 4) & 4) | (v & 2)
	p.atLatch = (p.read(address) >> shift) & 3
}

func (p *PPU) shiftBackground() {
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.attrShiftLo <<= 1
	p.attrShiftHi <<= 1
}

func (p *PPU) reloadBackground() {
	p.bgShiftLo = p.bgShiftLo&0xFF00 | uint16(p.patLoLatch)
	p.bgShiftHi = p.bgShiftHi&0xFF00 | uint16(p.patHiLatch)
	p.attrLatchLo = 0
	p.attrLatchHi = 0
	if p.atLatch&1 != 0 {
		p.attrLatchLo = 0xFF
	}
	if p.atLatch&2 != 0 {
		p.attrLatchHi = 0xFF
	}
	p.attrShiftLo = p.attrShiftLo&0xFF00 | uint16(p.attrLatchLo)
	p.attrShiftHi = p.attrShiftHi&0xFF00 | uint16(p.attrLatchHi)
}

// spriteDot runs sprite evaluation and the per-slot pattern fetches.
func (p *PPU) spriteDot(dot int, visibleLine bool) {
	if dot == 257 {
		if visibleLine {
			p.evaluateSprites()
		} else {
			p.spriteCount = 0
		}
	}
	if dot < 257 || dot > 320 {
		return
	}

	p.oamAddr = 0
	slot := (dot - 257) / 8
	switch dot % 8 {
	case 1, 3:
		// garbage nametable fetches
		p.read(0x2000 | p.v&0x0FFF)
	case 5:
		s := &p.sprites[slot]
		s.patLo = p.fetchSpritePattern(slot, 0)
	case 7:
		s := &p.sprites[slot]
		s.patHi = p.fetchSpritePattern(slot, 8)
	}
}

// evaluateSprites selects the sprites for the next scanline. Once eight
// are found the scan for a ninth also advances the byte index within each
// entry, reproducing the hardware's overflow misdetection.
func (p *PPU) evaluateSprites() {
	height := p.spriteHeight()
	count := 0
	n := 0

	for ; n < 64 && count < 8; n++ {
		y := p.oam[n*4]
		row := p.scanline - int(y)
		if row < 0 || row >= height {
			continue
		}
		p.sprites[count] = spriteSlot{
			index: uint8(n),
			y:     y,
			tile:  p.oam[n*4+1],
			attr:  p.oam[n*4+2],
			x:     p.oam[n*4+3],
		}
		count++
	}
	p.spriteCount = count

	m := 0
	for ; n < 64; n++ {
		row := p.scanline - int(p.oam[n*4+m])
		if row >= 0 && row < height {
			p.ppuStatus |= statusOverflow
			break
		}
		m = (m + 1) & 3
	}
}

func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&ctrlSpriteSize16 != 0 {
		return 16
	}
	return 8
}

// fetchSpritePattern reads one plane of a slot's pattern row. Empty slots
// fetch tile $FF so the address lines behave as on hardware.
func (p *PPU) fetchSpritePattern(slot int, plane uint16) uint8 {
	tile := uint8(0xFF)
	var attr uint8
	row := 0
	if slot < p.spriteCount {
		s := p.sprites[slot]
		tile = s.tile
		attr = s.attr
		row = p.scanline - int(s.y)
	}

	height := p.spriteHeight()
	if attr&0x80 != 0 {
		row = height - 1 - row
	}

	var address uint16
	if height == 16 {
		table := uint16(tile&1) * 0x1000
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		address = table + uint16(tile)*16 + uint16(row)
	} else {
		table := uint16(0)
		if p.ppuCtrl&ctrlSpriteTable != 0 {
			table = 0x1000
		}
		address = table + uint16(tile)*16 + uint16(row)
	}

	data := p.read(address + plane)
	if slot >= p.spriteCount {
		return 0
	}
	if attr&0x40 != 0 {
		data = reverseBits(data)
	}
	return data
}

func reverseBits(b uint8) uint8 {
	b = (b&0xF0)>>4 | (b&0x0F)<<4
	b = (b&0xCC)>>2 | (b&0x33)<<2
	b = (b&0xAA)>>1 | (b&0x55)<<1
	return b
}

// renderPixel resolves background and sprite output for one pixel and
// stores its colour in the back buffer.
func (p *PPU) renderPixel(x, y int, rendering bool) {
	if !rendering {
		p.back[y*ScreenWidth+x] = p.colour(p.backdrop())
		return
	}

	bgPixel := p.backgroundPixel(x)
	spPixel, behind, zero := p.spritePixel(x)

	var palette uint8
	switch {
	case bgPixel&3 == 0 && spPixel&3 == 0:
		palette = 0
	case bgPixel&3 == 0:
		palette = 0x10 | spPixel
	case spPixel&3 == 0:
		palette = bgPixel
	default:
		if zero && x < 255 {
			p.ppuStatus |= statusSprite0Hit
		}
		if behind {
			palette = bgPixel
		} else {
			palette = 0x10 | spPixel
		}
	}

	p.back[y*ScreenWidth+x] = p.colour(p.paletteEntry(palette))
}

func (p *PPU) backgroundPixel(x int) uint8 {
	if p.ppuMask&maskShowBG == 0 || (x < 8 && p.ppuMask&maskShowBGLeft == 0) {
		return 0
	}
	bit := 15 - uint16(p.x)
	pixel := uint8((p.bgShiftHi>>bit)&1)<<1 | uint8((p.bgShiftLo>>bit)&1)
	if pixel == 0 {
		return 0
	}
	attr := uint8((p.attrShiftHi>>bit)&1)<<1 | uint8((p.attrShiftLo>>bit)&1)
	return attr<<2 | pixel
}

// spritePixel returns the first opaque sprite pixel at x in OAM order as
// palette<<2|pixel, whether it sits behind the background and whether it
// is sprite zero.
func (p *PPU) spritePixel(x int) (uint8, bool, bool) {
	if p.ppuMask&maskShowSprites == 0 || (x < 8 && p.ppuMask&maskShowSPLeft == 0) {
		return 0, false, false
	}
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}
		bit := 7 - uint(offset)
		pixel := (s.patHi>>bit)&1<<1 | (s.patLo>>bit)&1
		if pixel == 0 {
			continue
		}
		return (s.attr&3)<<2 | pixel, s.attr&0x20 != 0, s.index == 0
	}
	return 0, false, false
}

func (p *PPU) backdrop() uint8 {
	// with rendering off and v inside palette RAM the PPU outputs that entry
	if p.v&0x3F00 == 0x3F00 {
		return p.paletteEntry(uint8(p.v & 0x1F))
	}
	return p.paletteEntry(0)
}

func (p *PPU) paletteEntry(index uint8) uint8 {
	if p.memory == nil {
		return 0
	}
	return p.memory.ReadPalette(index)
}

func (p *PPU) colour(entry uint8) uint32 {
	if p.ppuMask&maskGreyscale != 0 {
		entry &= 0x30
	}
	return NESColorToRGB(entry & 0x3F)
}

// incrementX increments the coarse X and wraps to next nametable if needed
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY increments fine Y, and if it overflows, increments coarse Y
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		// attribute rows wrap without switching nametable
		y = 0
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

// copyX copies all X-related bits from t to v (bits 10, 4-0)
func (p *PPU) copyX() {
	p.v = p.v&0xFBE0 | p.t&0x041F
}

// copyY copies all Y-related bits from t to v (bits 11, 14-5)
func (p *PPU) copyY() {
	p.v = p.v&0x841F | p.t&0x7BE0
}
