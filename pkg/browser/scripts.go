package browser

// Scripts evaluated in the page. Each takes a single object argument.

// selectOptionJS sets a select's index and value, then fires a bubbling
// change event so page handlers run as for a user selection.
const selectOptionJS = `({ selector, nth, index }) => {
  const select = document.querySelectorAll(selector)[nth];
  if (!select || index < 0 || index >= select.options.length) {
    return false;
  }
  select.selectedIndex = index;
  select.value = select.options[index].value;
  select.dispatchEvent(new Event('change', { bubbles: true }));
  return true;
}`

// scanJS is shared by the text scans. An element's label is its value and
// text content joined; find returns the first element whose label matches a
// needle, along with that label.
const scanJS = `
const labelOf = (el) =>
  ((el.value || '') + ' ' + (el.textContent || '')).trim().toLowerCase();
const find = ({ tags, needles, exact }) => {
  for (const el of document.querySelectorAll(tags)) {
    const label = labelOf(el);
    if (!label) continue;
    for (const needle of needles) {
      const n = needle.toLowerCase();
      if (exact ? label === n : label.includes(n)) {
        return { el, label };
      }
    }
  }
  return null;
};
`

const clickTextJS = `(arg) => {` + scanJS + `
  const hit = find(arg);
  if (!hit) return '';
  hit.el.click();
  return hit.label;
}`

// textPresentJS treats a document still loading as present, so pollers
// keep waiting through navigations.
const textPresentJS = `(arg) => {` + scanJS + `
  if (document.readyState !== 'complete') return true;
  return find(arg) !== null;
}`
