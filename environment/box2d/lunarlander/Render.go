package lunarlander

import (
	"image/color"

	"github.com/ByteArena/box2d"
	"github.com/fogleman/gg"
)

// worldToPixelCoord converts Box2D world coordinates to pixel
// coordinates with the origin at the top left of the viewport
func worldToPixelCoord(coords [2]float64) [2]float64 {
	pixelX := Scale * coords[0]
	pixelY := ViewportH - Scale*coords[1]

	return [2]float64{pixelX, pixelY}
}

// Render draws the current state of the environment and saves it as a
// PNG at the given file path
func (l *lunarLander) Render(filename string) error {
	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetColor(l.moonShade)
	dc.Clear()

	// Moon surface
	for i := 0; i < len(l.moonVertices)-1; i++ {
		v1 := worldToPixelCoord(l.moonVertices[i])
		v2 := worldToPixelCoord(l.moonVertices[i+1])
		dc.DrawLine(v1[0], v1[1], v2[0], v2[1])
	}
	dc.SetColor(l.moonShade)
	dc.SetLineWidth(5.0)
	dc.Stroke()

	// Sky, filled above the surface polygon
	dc.ClearPath()
	startCoords := worldToPixelCoord(
		[2]float64{l.moonVertices[0][0], ViewportH / Scale})
	dc.MoveTo(startCoords[0], startCoords[1])
	for i := range l.moonVertices {
		vertex := box2d.MakeB2Vec2(l.moonVertices[i][0], l.moonVertices[i][1])
		vertex = box2d.B2TransformVec2Mul(l.moon.M_xf, vertex)
		coords := worldToPixelCoord([2]float64{vertex.X, vertex.Y})
		dc.LineTo(coords[0], coords[1])
	}
	last := len(l.moonVertices) - 1
	endCoords := worldToPixelCoord(
		[2]float64{l.moonVertices[last][0], ViewportH / Scale})
	dc.LineTo(endCoords[0], endCoords[1])
	dc.LineTo(startCoords[0], startCoords[1])
	dc.SetColor(l.skyShade)
	dc.Fill()

	// Boundary walls
	dc.ClearPath()
	dc.SetColor(l.boundaryColour)
	dc.SetLineWidth(5.0)
	for i := range l.boundary {
		fix := l.boundary[i].GetFixtureList()
		sh := fix.M_shape.(*box2d.B2EdgeShape)

		p1 := worldToPixelCoord([2]float64{sh.M_vertex1.X, sh.M_vertex1.Y})
		p2 := worldToPixelCoord([2]float64{sh.M_vertex2.X, sh.M_vertex2.Y})

		dc.DrawLine(p1[0], p1[1], p2[0], p2[1])
	}
	dc.Stroke()

	// Ship hull
	l.fillBody(dc, l.lander, l.landerColour)

	// Legs
	for _, leg := range l.legs {
		l.fillBody(dc, leg, l.legColour)
	}

	return dc.SavePNG(filename)
}

// fillBody draws the polygon fixtures of a Box2D body as filled paths
func (l *lunarLander) fillBody(dc *gg.Context, body *box2d.B2Body,
	colour color.Color) {
	fix := body.GetFixtureList()
	for fix != nil {
		shape := fix.M_shape.(*box2d.B2PolygonShape)
		path := make([][2]float64, 0, shape.M_count)
		for i, vertex := range shape.M_vertices {
			if i >= shape.M_count {
				break
			}
			vertex = box2d.B2TransformVec2Mul(fix.M_body.M_xf, vertex)
			path = append(path, worldToPixelCoord(
				[2]float64{vertex.X, vertex.Y}))
		}

		dc.ClearPath()
		for _, point := range path {
			dc.LineTo(point[0], point[1])
		}
		dc.LineTo(path[0][0], path[0][1])
		dc.SetColor(colour)
		dc.Fill()

		fix = fix.M_next
	}
}
