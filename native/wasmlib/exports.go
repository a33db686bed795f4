package wasmlib

import (
	"slices"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/cairobind/errors"
	"github.com/wippyai/cairobind/native"
)

// lifetime names the per-kind lifetime entry points. Empty names do not
// exist for the kind.
type lifetime struct {
	reference   string
	destroy     string
	refcount    string
	status      string
	typ         string
	setUserData string
}

var lifetimes = map[native.Kind]lifetime{
	native.KindSurface: {
		"cairo_surface_reference", "cairo_surface_destroy", "cairo_surface_get_reference_count",
		"cairo_surface_status", "cairo_surface_get_type", "cairo_surface_set_user_data",
	},
	native.KindPattern: {
		"cairo_pattern_reference", "cairo_pattern_destroy", "cairo_pattern_get_reference_count",
		"cairo_pattern_status", "cairo_pattern_get_type", "cairo_pattern_set_user_data",
	},
	native.KindContext: {
		"cairo_reference", "cairo_destroy", "cairo_get_reference_count",
		"cairo_status", "", "cairo_set_user_data",
	},
	native.KindFontFace: {
		"cairo_font_face_reference", "cairo_font_face_destroy", "cairo_font_face_get_reference_count",
		"cairo_font_face_status", "cairo_font_face_get_type", "cairo_font_face_set_user_data",
	},
	native.KindScaledFont: {
		"cairo_scaled_font_reference", "cairo_scaled_font_destroy", "cairo_scaled_font_get_reference_count",
		"cairo_scaled_font_status", "cairo_scaled_font_get_type", "cairo_scaled_font_set_user_data",
	},
	native.KindFontOptions: {
		destroy: "cairo_font_options_destroy",
		status:  "cairo_font_options_status",
	},
	native.KindPath: {
		destroy: "cairo_path_destroy",
	},
}

var vectorCreate = map[native.SurfaceType][2]string{
	native.SurfaceTypePDF: {"cairo_pdf_surface_create", "cairo_pdf_surface_create_for_stream"},
	native.SurfaceTypeSVG: {"cairo_svg_surface_create", "cairo_svg_surface_create_for_stream"},
	native.SurfaceTypePS:  {"cairo_ps_surface_create", "cairo_ps_surface_create_for_stream"},
}

var entryPoints = []string{
	"malloc",
	"free",
	"cairo_version_string",
	"bind_destroy_func",
	"bind_read_func",
	"bind_write_func",

	"cairo_image_surface_create",
	"cairo_image_surface_create_for_data",
	"cairo_format_stride_for_width",
	"cairo_image_surface_get_data",
	"cairo_image_surface_get_format",
	"cairo_image_surface_get_width",
	"cairo_image_surface_get_height",
	"cairo_image_surface_get_stride",
	"cairo_image_surface_create_from_png",
	"cairo_image_surface_create_from_png_stream",
	"cairo_surface_write_to_png",
	"cairo_surface_write_to_png_stream",
	"cairo_surface_set_mime_data",
	"cairo_surface_get_mime_data",
	"cairo_surface_supports_mime_type",
	"cairo_surface_get_content",
	"cairo_surface_flush",
	"cairo_surface_finish",
	"cairo_surface_mark_dirty",
	"cairo_surface_show_page",
	"cairo_surface_copy_page",
	"cairo_surface_mark_dirty_rectangle",
	"cairo_surface_set_fallback_resolution",
	"cairo_surface_get_fallback_resolution",
	"cairo_surface_get_font_options",
	"cairo_surface_set_device_offset",
	"cairo_surface_get_device_offset",
	"cairo_surface_create_similar",
	"cairo_recording_surface_create",
	"cairo_recording_surface_ink_extents",

	"cairo_create",
	"cairo_get_target",
	"cairo_get_source",
	"cairo_set_source",
	"cairo_set_source_rgba",
	"cairo_set_source_surface",
	"cairo_new_path",
	"cairo_move_to",
	"cairo_line_to",
	"cairo_curve_to",
	"cairo_close_path",
	"cairo_rectangle",
	"cairo_copy_path",
	"cairo_append_path",
	"cairo_paint",
	"cairo_fill",
	"cairo_stroke",
	"cairo_show_page",
	"cairo_set_font_face",
	"cairo_get_font_face",

	"cairo_pattern_create_rgba",
	"cairo_pattern_create_for_surface",
	"cairo_pattern_create_linear",
	"cairo_pattern_create_radial",
	"cairo_pattern_get_rgba",
	"cairo_pattern_get_surface",
	"cairo_pattern_add_color_stop_rgba",
	"cairo_pattern_get_color_stop_count",
	"cairo_pattern_get_linear_points",
	"cairo_pattern_get_radial_circles",
	"cairo_pattern_set_extend",
	"cairo_pattern_get_extend",
	"cairo_pattern_set_filter",
	"cairo_pattern_get_filter",

	"cairo_toy_font_face_create",
	"cairo_toy_font_face_get_family",
	"cairo_toy_font_face_get_slant",
	"cairo_toy_font_face_get_weight",
	"cairo_scaled_font_create",
	"cairo_scaled_font_get_font_face",
	"cairo_font_options_create",
	"cairo_font_options_copy",
	"cairo_font_options_merge",
	"cairo_font_options_hash",
	"cairo_font_options_equal",
	"cairo_font_options_set_antialias",
	"cairo_font_options_get_antialias",
	"cairo_font_options_set_subpixel_order",
	"cairo_font_options_get_subpixel_order",
	"cairo_font_options_set_hint_style",
	"cairo_font_options_get_hint_style",
	"cairo_font_options_set_hint_metrics",
	"cairo_font_options_get_hint_metrics",
}

// requiredExports returns every function the guest must export, sorted.
func requiredExports() []string {
	names := slices.Clone(entryPoints)
	for _, lt := range lifetimes {
		for _, n := range []string{lt.reference, lt.destroy, lt.refcount, lt.status, lt.typ, lt.setUserData} {
			if n != "" {
				names = append(names, n)
			}
		}
	}
	for _, pair := range vectorCreate {
		names = append(names, pair[0], pair[1])
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// checkExports reports every required function and memory the compiled
// module does not export.
func checkExports(name string, compiled wazero.CompiledModule) error {
	fns := compiled.ExportedFunctions()
	var missing []string
	if _, ok := compiled.ExportedMemories()["memory"]; !ok {
		missing = append(missing, "memory")
	}
	for _, n := range requiredExports() {
		if _, ok := fns[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &errors.MissingExportsError{Module: name, Exports: missing}
	}
	return nil
}
