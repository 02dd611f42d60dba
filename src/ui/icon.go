package ui

import "fyne.io/fyne/v2"

const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="2" y="3" width="9" height="7" rx="1.5" fill="none" stroke="#0078d4" stroke-width="1.5"/>
  <path d="M4 12.5 L6 10 L8 10" fill="none" stroke="#0078d4" stroke-width="1.2" stroke-linejoin="round"/>
  <circle cx="12" cy="11.5" r="2.5" fill="#f5a623"/>
  <path d="M12 10.2 L12 11.6 L13 12.2" fill="none" stroke="#333333" stroke-width="0.7" stroke-linecap="round"/>
</svg>`

// Icon is the application and tray icon.
var Icon = fyne.NewStaticResource("kairo.svg", []byte(iconSVG))
